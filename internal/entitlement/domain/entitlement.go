// Package domain 包含下载授权的领域模型
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// State 授权状态
type State string

const (
	// StateActive 未过期且剩余兑换次数大于零
	StateActive State = "ACTIVE"
	// StateExpired 已过期，终态
	StateExpired State = "EXPIRED"
	// StateExhausted 兑换次数用尽，终态
	StateExhausted State = "EXHAUSTED"
)

// Entitlement 下载授权实体
// 每个已购样本对应一条授权：一个全局唯一 token、兑换预算与过期时间
type Entitlement struct {
	gorm.Model
	// 所属订单
	OrderID uint `gorm:"column:order_id;index;not null" json:"order_id"`
	// 样本引用
	SampleID uint `gorm:"column:sample_id;index;not null" json:"sample_id"`
	// 买家邮箱（从订单冗余，可独立更新）
	CustomerEmail string `gorm:"column:customer_email;type:varchar(255);index;not null" json:"customer_email"`
	// 下载 token，签发后不可变
	Token string `gorm:"column:token;type:varchar(36);uniqueIndex;not null" json:"token"`
	// 已兑换次数
	DownloadCount int `gorm:"column:download_count;not null;default:0" json:"download_count"`
	// 最大兑换次数
	DownloadLimit int `gorm:"column:download_limit;not null" json:"download_limit"`
	// 过期时间
	ExpiresAt time.Time `gorm:"column:expires_at;index;not null" json:"expires_at"`
}

func (Entitlement) TableName() string { return "entitlements" }

// NewEntitlement 签发新授权，token 为加密随机的全局唯一字符串
func NewEntitlement(orderID, sampleID uint, email string, ttl time.Duration, limit int) *Entitlement {
	return &Entitlement{
		OrderID:       orderID,
		SampleID:      sampleID,
		CustomerEmail: email,
		Token:         uuid.New().String(),
		DownloadCount: 0,
		DownloadLimit: limit,
		ExpiresAt:     time.Now().Add(ttl),
	}
}

// StateAt 返回授权在给定时刻的状态；过期判定优先于次数判定
func (e *Entitlement) StateAt(now time.Time) State {
	if now.After(e.ExpiresAt) {
		return StateExpired
	}
	if e.DownloadCount >= e.DownloadLimit {
		return StateExhausted
	}
	return StateActive
}

// Remaining 剩余兑换次数
func (e *Entitlement) Remaining() int {
	remaining := e.DownloadLimit - e.DownloadCount
	if remaining < 0 {
		return 0
	}
	return remaining
}
