package policies

import "context"

type StoreAPI interface {
	List(ctx context.Context) ([]Policy, error)
	Get(ctx context.Context, id string) (Policy, error)
	Create(ctx context.Context, p Policy) (Policy, error)
	Update(ctx context.Context, p Policy) (Policy, error)
	Delete(ctx context.Context, id string) error
}
