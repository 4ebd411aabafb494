package notices

import "context"

type StoreAPI interface {
	List(ctx context.Context) ([]Notice, error)
	Create(ctx context.Context, title, content, createdBy string) (Notice, error)
	Update(ctx context.Context, id, title, content string) (Notice, error)
	Delete(ctx context.Context, id string) error
}
