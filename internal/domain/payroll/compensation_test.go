package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestPlanCompensationChange(t *testing.T) {
	date := time.Date(2025, time.June, 1, 15, 30, 0, 0, time.UTC)
	active := &CompensationRecord{ID: "c1", BasicSalary: amt("3000"), IsActive: true}

	tests := []struct {
		name    string
		current *CompensationRecord
		amount  string
		want    ChangeKind
	}{
		{"no record", nil, "3000", ChangeCreateFirst},
		{"inactive record", &CompensationRecord{ID: "c0", BasicSalary: amt("2000")}, "3000", ChangeCreateFirst},
		{"same amount", active, "3000.00", ChangeUpdateInPlace},
		{"raise", active, "3500", ChangeSupersede},
		{"cut", active, "2500", ChangeSupersede},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanCompensationChange(tt.current, decimal.RequireFromString(tt.amount), date)
			if plan.Kind != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, plan.Kind)
			}
			if tt.want == ChangeCreateFirst && plan.Current != nil {
				t.Fatalf("expected no current record for first create")
			}
			if tt.want != ChangeCreateFirst && plan.Current != tt.current {
				t.Fatalf("expected plan to target the active record")
			}
			if !plan.Date.Equal(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)) {
				t.Fatalf("expected date truncated to day, got %s", plan.Date)
			}
		})
	}
}
