package domain

import (
	"context"
	"time"
)

// StorageSigner 对象存储签名网关：给定对象 key 与有效期，返回限时下载 URL
type StorageSigner interface {
	SignURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error)
}

// SampleResolver 解析样本对应的对象 key
type SampleResolver interface {
	ObjectKey(ctx context.Context, sampleID uint) (string, error)
}
