package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

const PayModeGIRO = "GIRO"

// Employee is a crew record. NRIC and bank account are held sealed at rest
// and opened by the store.
type Employee struct {
	ID              string           `json:"id"`
	UserID          string           `json:"userId,omitempty"`
	Name            string           `json:"name"`
	FullName        string           `json:"fullName,omitempty"`
	EmployeeNo      string           `json:"employeeNo,omitempty"`
	NRIC            string           `json:"nric,omitempty"`
	Gender          string           `json:"gender,omitempty"`
	Race            string           `json:"race,omitempty"`
	Nationality     string           `json:"nationality,omitempty"`
	DateOfBirth     *time.Time       `json:"dateOfBirth,omitempty"`
	PRStartDate     *time.Time       `json:"prStartDate,omitempty"`
	PRYear          *int             `json:"prYear,omitempty"`
	HireDate        *time.Time       `json:"hireDate,omitempty"`
	TerminationDate *time.Time       `json:"terminationDate,omitempty"`
	JobTitle        string           `json:"jobTitle,omitempty"`
	IsActive        bool             `json:"isActive"`
	PayMode         string           `json:"payMode"`
	BankName        string           `json:"bankName,omitempty"`
	BankCode        string           `json:"bankCode,omitempty"`
	BranchCode      string           `json:"branchCode,omitempty"`
	BankAccountNo   string           `json:"bankAccountNo,omitempty"`
	BasicSalary     *decimal.Decimal `json:"basicSalary,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// Input carries the editable crew fields for create and update.
type Input struct {
	UserID          string
	Name            string
	FullName        string
	EmployeeNo      string
	NRIC            string
	Gender          string
	Race            string
	Nationality     string
	DateOfBirth     *time.Time
	PRStartDate     *time.Time
	PRYear          *int
	HireDate        *time.Time
	TerminationDate *time.Time
	JobTitle        string
	IsActive        bool
	PayMode         string
	BankName        string
	BankCode        string
	BranchCode      string
	BankAccountNo   string
}
