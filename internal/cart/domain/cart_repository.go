package domain

import "context"

type CartRepository interface {
	// Upsert 原子地新增或累加一条购物车行
	Upsert(ctx context.Context, owner Owner, sampleID uint, qty int) error
	// GetLine 按行 ID 取行
	GetLine(ctx context.Context, lineID uint) (*CartItem, error)
	// ListLines 返回与目录实时价格联查后的行
	ListLines(ctx context.Context, owner Owner) ([]Line, error)
	// CountLines 返回行数
	CountLines(ctx context.Context, owner Owner) (int64, error)
	UpdateQuantity(ctx context.Context, lineID uint, qty int) error
	DeleteLine(ctx context.Context, lineID uint) error
	Clear(ctx context.Context, owner Owner) error
	// SampleExists 判断样本是否存在于目录
	SampleExists(ctx context.Context, sampleID uint) (bool, error)
}
