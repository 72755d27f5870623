package domain

import "context"

type ProductRepository interface {
	// Create 写入新记录；id 已存在时返回 ErrAlreadyExists，不覆盖已有记录
	Create(ctx context.Context, product *Product) error
	Get(ctx context.Context, id int64) (*Product, error)
	// List 按 id 升序返回全部记录
	List(ctx context.Context) ([]*Product, error)
	// Update 覆盖已有记录；id 不存在时返回 ErrNotFound
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
