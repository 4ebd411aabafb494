package payroll

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrPayslipNotFound  = errors.New("payslip not found")
	ErrPreviewEmpty     = errors.New("payroll preview returned no rows")
)
