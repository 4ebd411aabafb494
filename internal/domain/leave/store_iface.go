package leave

import "context"

type StoreAPI interface {
	CreateRequest(ctx context.Context, req LeaveRequest) (LeaveRequest, error)
	ListForEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	List(ctx context.Context, status Status, category Category) ([]LeaveRequest, error)
	Get(ctx context.Context, id string) (LeaveRequest, error)
	// UpdateStatus moves a request out of from; it reports false when the
	// request was no longer in that status.
	UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error)
}
