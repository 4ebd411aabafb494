// Package period models a payroll month ("YYYY-MM") and a user's persisted
// choice of which month they are working on.
package period

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidPeriod = errors.New("period must be in YYYY-MM format")

const layout = "2006-01"

type Period struct {
	year  int
	month time.Month
}

func New(year int, month time.Month) Period {
	return Period{year: year, month: month}
}

func Parse(value string) (Period, error) {
	if len(value) != len(layout) {
		return Period{}, ErrInvalidPeriod
	}
	t, err := time.Parse(layout, value)
	if err != nil || t.Year() == 0 {
		return Period{}, ErrInvalidPeriod
	}
	return Period{year: t.Year(), month: t.Month()}, nil
}

// Of returns the period containing t in t's location.
func Of(t time.Time) Period {
	return Period{year: t.Year(), month: t.Month()}
}

// Current is the period containing the local wall clock's today.
func Current() Period {
	return Of(time.Now())
}

func (p Period) IsZero() bool {
	return p.year == 0
}

func (p Period) Year() int {
	return p.year
}

func (p Period) Month() time.Month {
	return p.month
}

func (p Period) String() string {
	if p.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", p.year, int(p.month))
}

func (p Period) Start() time.Time {
	return time.Date(p.year, p.month, 1, 0, 0, 0, 0, time.UTC)
}

func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

func (p Period) Label() string {
	return p.Start().Format("January 2006")
}

func (p Period) Prev() Period {
	return Of(p.Start().AddDate(0, -1, 0))
}

func (p Period) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON reads "" as the zero Period, which is what MarshalJSON
// writes for it. null leaves p unchanged, like the standard decoder.
func (p *Period) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return ErrInvalidPeriod
	}
	if raw == "" {
		*p = Period{}
		return nil
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
