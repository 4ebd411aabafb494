package leave

import (
	"io"
	"strings"
	"time"
)

type Category string

const (
	CategoryAnnual Category = "annual"
	CategorySick   Category = "sick"
	CategoryUnpaid Category = "unpaid"
	CategoryOther  Category = "other"
)

var Categories = []Category{CategoryAnnual, CategorySick, CategoryUnpaid, CategoryOther}

// Entitlements is the fixed yearly allotment per category. It is not
// pro-rated and not stored per employee.
var Entitlements = map[Category]float64{
	CategoryAnnual: 14,
	CategorySick:   14,
	CategoryUnpaid: 0,
	CategoryOther:  0,
}

// NormalizeCategory maps empty and unknown values to CategoryOther.
func NormalizeCategory(raw string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := Entitlements[c]; ok {
		return c
	}
	return CategoryOther
}

func (c Category) Valid() bool {
	_, ok := Entitlements[c]
	return ok
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type LeaveRequest struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employeeId"`
	EmployeeName string     `json:"employeeName,omitempty"`
	Category     Category   `json:"category"`
	LeaveDate    time.Time  `json:"leaveDate"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	Days         float64    `json:"days"`
	Status       Status     `json:"status"`
	Remark       string     `json:"remark,omitempty"`
	EvidencePath string     `json:"-"`
	EvidenceURL  string     `json:"evidenceUrl,omitempty"`
	DecidedAt    *time.Time `json:"decidedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type Balance struct {
	Total   float64 `json:"total"`
	Used    float64 `json:"used"`
	Balance float64 `json:"balance"`
}

type Evidence struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

type SubmitInput struct {
	Category  string
	StartDate time.Time
	EndDate   time.Time
	Remark    string
	Evidence  *Evidence
}
