package domain

import (
	"context"
	"errors"
	"time"
)

// Follow 关注关系，(user, producer) 上有唯一索引。
// 取关是物理删除，之后可重新关注。
type Follow struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UserID     uint      `gorm:"column:user_id;uniqueIndex:idx_user_producer;not null" json:"user_id"`
	ProducerID uint      `gorm:"column:producer_id;uniqueIndex:idx_user_producer;not null" json:"producer_id"`
}

func (Follow) TableName() string { return "follows" }

var (
	ErrNotFollowing     = errors.New("not following this producer")
	ErrProducerNotFound = errors.New("producer not found")
)

type FollowRepository interface {
	Save(ctx context.Context, follow *Follow) error
	Delete(ctx context.Context, userID, producerID uint) (int64, error)
	ListByUser(ctx context.Context, userID uint) ([]*Follow, error)
	CountByProducer(ctx context.Context, producerID uint) (int64, error)
	ProducerExists(ctx context.Context, producerID uint) (bool, error)
}
