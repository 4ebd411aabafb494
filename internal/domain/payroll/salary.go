package payroll

import "hrms/internal/domain/period"

// ToEditableRow merges base compensation with the period's adjustment. A nil
// compensation means no active record and shows as zero basic salary.
func ToEditableRow(comp *CompensationRecord, adj MonthlySalaryAdjustment) EditableRow {
	row := EditableRow{
		EmployeeID:       adj.EmployeeID,
		Period:           adj.Period,
		Allowance:        adj.Allowance,
		Overtime:         adj.Overtime,
		Bonus:            adj.Bonus,
		LeaveAdjustment:  NewAmount(adj.UnutilisedLeavePay.Sub(adj.UnpaidLeaveDeduction.Decimal)),
		AdvanceDeduction: adj.AdvanceDeduction,
		Adjustment:       adj.Adjustment,
	}
	if comp != nil {
		row.BasicSalary = comp.BasicSalary
		if row.EmployeeID == "" {
			row.EmployeeID = comp.EmployeeID
		}
	}
	return row
}

// ToPersistedAdjustment splits the signed leave adjustment back into its two
// non-negative fields; at most one of them is non-zero afterwards.
func ToPersistedAdjustment(row EditableRow) MonthlySalaryAdjustment {
	v := row.LeaveAdjustment.Decimal
	return MonthlySalaryAdjustment{
		EmployeeID:           row.EmployeeID,
		Period:               row.Period,
		Allowance:            row.Allowance,
		Overtime:             row.Overtime,
		Bonus:                row.Bonus,
		UnutilisedLeavePay:   NewAmount(maxZero(v)),
		UnpaidLeaveDeduction: NewAmount(maxZero(v.Neg())),
		AdvanceDeduction:     row.AdvanceDeduction,
		Adjustment:           row.Adjustment,
	}
}

// MergeRows builds one editable row per employee, in the given order.
// Employees without an adjustment for the period get an all-zero row.
func MergeRows(
	p period.Period,
	employees []EmployeeRef,
	comps map[string]CompensationRecord,
	adjs map[string]MonthlySalaryAdjustment,
	withPayslip map[string]bool,
) []EditableRow {
	rows := make([]EditableRow, 0, len(employees))
	for _, emp := range employees {
		adj, ok := adjs[emp.ID]
		if !ok {
			adj = MonthlySalaryAdjustment{EmployeeID: emp.ID, Period: p}
		}
		var comp *CompensationRecord
		if c, ok := comps[emp.ID]; ok {
			comp = &c
		}
		row := ToEditableRow(comp, adj)
		row.EmployeeID = emp.ID
		row.EmployeeName = emp.Name
		row.Period = p
		row.HasPayslip = withPayslip[emp.ID]
		rows = append(rows, row)
	}
	return rows
}
