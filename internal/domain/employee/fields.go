package employee

import (
	"hrms/internal/domain/auth"
	"hrms/internal/platform/crypto"
)

// FilterSensitiveFields masks identity and bank numbers for callers outside
// HR. Employees viewing their own record see masked values; anyone else sees
// none.
func FilterSensitiveFields(emp *Employee, user auth.UserContext) {
	if user.Role == auth.RoleHR || user.Role == auth.RoleAdmin {
		return
	}

	if user.EmployeeID != "" && user.EmployeeID == emp.ID {
		emp.NRIC = crypto.Mask(emp.NRIC)
		emp.BankAccountNo = crypto.Mask(emp.BankAccountNo)
		return
	}

	emp.NRIC = ""
	emp.BankAccountNo = ""
	emp.BasicSalary = nil
}
