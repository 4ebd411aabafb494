package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type ChangeKind string

const (
	ChangeCreateFirst   ChangeKind = "create_first"
	ChangeUpdateInPlace ChangeKind = "update_in_place"
	ChangeSupersede     ChangeKind = "supersede"
)

// CompensationPlan describes how to move an employee to a new basic salary
// while keeping exactly one active record.
type CompensationPlan struct {
	Kind ChangeKind
	// Current is the active record to update or deactivate; nil for CreateFirst.
	Current *CompensationRecord
	Amount  decimal.Decimal
	Date    time.Time
}

// PlanCompensationChange decides between creating the first record, updating
// the active record when the amount is unchanged, and superseding it.
func PlanCompensationChange(current *CompensationRecord, amount decimal.Decimal, date time.Time) CompensationPlan {
	plan := CompensationPlan{Amount: amount, Date: truncateDay(date)}
	switch {
	case current == nil || !current.IsActive:
		plan.Kind = ChangeCreateFirst
	case current.BasicSalary.Equal(amount):
		plan.Kind = ChangeUpdateInPlace
		plan.Current = current
	default:
		plan.Kind = ChangeSupersede
		plan.Current = current
	}
	return plan
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
