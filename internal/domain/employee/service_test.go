package employee

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hrms/internal/platform/apperr"
)

type fakeStore struct {
	employees map[string]Employee
	created   []Input
}

func newFakeStore() *fakeStore {
	return &fakeStore{employees: map[string]Employee{}}
}

func (f *fakeStore) List(context.Context) ([]Employee, error) {
	out := make([]Employee, 0, len(f.employees))
	for _, e := range f.employees {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (Employee, error) {
	emp, ok := f.employees[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	return emp, nil
}

func (f *fakeStore) GetByUserID(_ context.Context, userID string) (Employee, error) {
	for _, e := range f.employees {
		if e.UserID == userID {
			return e, nil
		}
	}
	return Employee{}, ErrNotFound
}

func (f *fakeStore) Create(_ context.Context, in Input) (Employee, error) {
	if in.UserID != "" {
		if _, err := f.GetByUserID(context.Background(), in.UserID); err == nil {
			return Employee{}, ErrUserLinked
		}
	}
	f.created = append(f.created, in)
	emp := fromInput("crew-"+in.Name, in)
	f.employees[emp.ID] = emp
	return emp, nil
}

func (f *fakeStore) Update(_ context.Context, id string, in Input) (Employee, error) {
	if _, ok := f.employees[id]; !ok {
		return Employee{}, ErrNotFound
	}
	emp := fromInput(id, in)
	f.employees[id] = emp
	return emp, nil
}

func fromInput(id string, in Input) Employee {
	return Employee{
		ID:            id,
		UserID:        in.UserID,
		Name:          in.Name,
		NRIC:          in.NRIC,
		IsActive:      in.IsActive,
		PayMode:       in.PayMode,
		BankAccountNo: in.BankAccountNo,
		HireDate:      in.HireDate,
	}
}

type recorder struct {
	actions []string
	after   []any
}

func (r *recorder) Record(_ context.Context, action, _, _ string, _, after any) error {
	r.actions = append(r.actions, action)
	r.after = append(r.after, after)
	return nil
}

func TestCreateRequiresNameAndNRIC(t *testing.T) {
	svc := NewService(newFakeStore())

	_, err := svc.Create(context.Background(), Input{Name: "  "})
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	require.Equal(t, apperr.KindValidation, appErr.Kind)
	require.Contains(t, appErr.Fields, "name")
	require.Contains(t, appErr.Fields, "nric")
}

func TestCreateDefaultsPayModeAndRedactsAudit(t *testing.T) {
	st := newFakeStore()
	rec := &recorder{}
	svc := NewService(st)
	svc.Audit = rec

	emp, err := svc.Create(context.Background(), Input{Name: "Ali", NRIC: " s1234567d ", BankAccountNo: "0123456789"})
	require.NoError(t, err)
	require.Equal(t, PayModeGIRO, emp.PayMode)
	require.Equal(t, "S1234567D", emp.NRIC)

	require.Equal(t, []string{"employee.create"}, rec.actions)
	audited := rec.after[0].(Employee)
	require.Empty(t, audited.NRIC)
	require.Empty(t, audited.BankAccountNo)
}

func TestCreateForUserRejectsSecondLink(t *testing.T) {
	svc := NewService(newFakeStore())

	_, err := svc.CreateForUser(context.Background(), "user-1", "Ali", "S1234567D")
	require.NoError(t, err)

	_, err = svc.CreateForUser(context.Background(), "user-1", "Bea", "S7654321A")
	require.True(t, apperr.Is(err, apperr.KindValidation))

	emp, err := svc.ForUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, "Ali", emp.Name)
}

func TestUpdateKeepsUserLink(t *testing.T) {
	st := newFakeStore()
	st.employees["crew-1"] = Employee{ID: "crew-1", UserID: "user-1", Name: "Ali"}
	svc := NewService(st)

	hire := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	emp, err := svc.Update(context.Background(), "crew-1", Input{Name: "Ali Bin Abu", NRIC: "S1234567D", HireDate: &hire})
	require.NoError(t, err)
	require.Equal(t, "user-1", emp.UserID)
	require.Equal(t, "Ali Bin Abu", emp.Name)

	_, err = svc.Update(context.Background(), "missing", Input{Name: "X", NRIC: "Y"})
	require.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUpdateRejectsTerminationBeforeHire(t *testing.T) {
	st := newFakeStore()
	st.employees["crew-1"] = Employee{ID: "crew-1", Name: "Ali"}
	svc := NewService(st)

	hire := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	term := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Update(context.Background(), "crew-1", Input{Name: "Ali", NRIC: "S1", HireDate: &hire, TerminationDate: &term})
	require.True(t, apperr.Is(err, apperr.KindValidation))
}
