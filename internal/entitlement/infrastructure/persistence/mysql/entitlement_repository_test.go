package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/samplemarket/internal/entitlement/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库按连接隔离，必须限制为单连接
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Entitlement{}))
	return db
}

func TestRedeemIncrement_StopsAtLimit(t *testing.T) {
	db := openTestDB(t)
	repo := NewEntitlementRepository(db)
	ctx := context.Background()

	e := domain.NewEntitlement(1, 42, "buyer@example.com", time.Hour, 2)
	require.NoError(t, repo.Save(ctx, e))

	affected, err := repo.RedeemIncrement(ctx, e.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.RedeemIncrement(ctx, e.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// 预算耗尽后条件更新不再命中
	affected, err = repo.RedeemIncrement(ctx, e.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	got, err := repo.GetByToken(ctx, e.Token)
	require.NoError(t, err)
	assert.Equal(t, 2, got.DownloadCount)
}

func TestRedeemIncrement_UnknownToken(t *testing.T) {
	db := openTestDB(t)
	repo := NewEntitlementRepository(db)

	affected, err := repo.RedeemIncrement(context.Background(), "no-such-token")
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}
