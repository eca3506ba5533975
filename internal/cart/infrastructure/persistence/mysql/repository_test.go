package mysql

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/samplemarket/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/samplemarket/internal/catalog/domain"
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
	require.NoError(t, db.AutoMigrate(&catalogdomain.Sample{}, &domain.CartItem{}))
	return db
}

func seedSample(t *testing.T, db *gorm.DB, title, price string) uint {
	t.Helper()
	s := &catalogdomain.Sample{
		Title:      title,
		Price:      decimal.RequireFromString(price),
		ObjectKey:  "samples/" + title + ".wav",
		ProducerID: 1,
	}
	require.NoError(t, db.Create(s).Error)
	return s.ID
}

func TestUpsert_AccumulatesIntoSingleRow(t *testing.T) {
	db := openTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()
	sampleID := seedSample(t, db, "808 Kick", "9.99")
	owner := domain.GuestOwner("sess-abc")

	require.NoError(t, repo.Upsert(ctx, owner, sampleID, 2))
	require.NoError(t, repo.Upsert(ctx, owner, sampleID, 3))

	lines, err := repo.ListLines(ctx, owner)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)

	count, err := repo.CountLines(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUpsert_OwnersDoNotCollide(t *testing.T) {
	db := openTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()
	sampleID := seedSample(t, db, "808 Kick", "9.99")

	require.NoError(t, repo.Upsert(ctx, domain.UserOwner("7"), sampleID, 1))
	require.NoError(t, repo.Upsert(ctx, domain.GuestOwner("7"), sampleID, 2))

	lines, err := repo.ListLines(ctx, domain.UserOwner("7"))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestDeleteLine_FreesRowForReAdd(t *testing.T) {
	db := openTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()
	sampleID := seedSample(t, db, "808 Kick", "9.99")
	owner := domain.UserOwner("7")

	require.NoError(t, repo.Upsert(ctx, owner, sampleID, 2))
	lines, err := repo.ListLines(ctx, owner)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.NoError(t, repo.DeleteLine(ctx, lines[0].LineID))

	// 删除后唯一索引槽位释放，重新加购必须成功
	require.NoError(t, repo.Upsert(ctx, owner, sampleID, 1))

	lines, err = repo.ListLines(ctx, owner)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestClear_FreesRowsForReAdd(t *testing.T) {
	db := openTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()
	kickID := seedSample(t, db, "808 Kick", "9.99")
	crackleID := seedSample(t, db, "Vinyl Crackle", "4.50")
	owner := domain.GuestOwner("sess-abc")

	require.NoError(t, repo.Upsert(ctx, owner, kickID, 1))
	require.NoError(t, repo.Upsert(ctx, owner, crackleID, 1))
	require.NoError(t, repo.Clear(ctx, owner))

	count, err := repo.CountLines(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, int64(0), count)

	require.NoError(t, repo.Upsert(ctx, owner, kickID, 3))
	lines, err := repo.ListLines(ctx, owner)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestListLines_SkipsRemovedSamples(t *testing.T) {
	db := openTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()
	kickID := seedSample(t, db, "808 Kick", "9.99")
	crackleID := seedSample(t, db, "Vinyl Crackle", "4.50")
	owner := domain.UserOwner("7")

	require.NoError(t, repo.Upsert(ctx, owner, kickID, 1))
	require.NoError(t, repo.Upsert(ctx, owner, crackleID, 1))

	// 目录侧下架样本后购物车不再展示该行
	require.NoError(t, db.Delete(&catalogdomain.Sample{}, crackleID).Error)

	lines, err := repo.ListLines(ctx, owner)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, kickID, lines[0].SampleID)
}
