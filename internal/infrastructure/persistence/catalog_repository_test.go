package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/mylittlethingz/backend/internal/domain/catalog"
	"github.com/mylittlethingz/backend/internal/domain/shared"
)

func setupCatalogDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&catalog.GiftItem{}, &catalog.Interaction{}))
	return db
}

func newTestItem(t *testing.T, title, category string) *catalog.GiftItem {
	t.Helper()
	item, err := catalog.NewGiftItem(title, decimal.NewFromInt(1500), uuid.New(), category)
	require.NoError(t, err)
	return item
}

func TestGormItemRepository_FindByID(t *testing.T) {
	db := setupCatalogDB(t)
	repo := NewGormItemRepository(db)
	ctx := context.Background()

	item := newTestItem(t, "Personalized Mug", "mugs")
	require.NoError(t, repo.Save(ctx, item))

	found, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Title, found.Title)
	assert.True(t, item.Price.Equal(found.Price))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormItemRepository_FindActive(t *testing.T) {
	db := setupCatalogDB(t)
	repo := NewGormItemRepository(db)
	ctx := context.Background()

	active := newTestItem(t, "Photo Frame", "frames")
	require.NoError(t, repo.Save(ctx, active))

	retired := newTestItem(t, "Old Frame", "frames")
	retired.Deactivate()
	require.NoError(t, repo.Save(ctx, retired))

	items, err := repo.FindActive(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, active.ID, items[0].ID)
}

func TestGormItemRepository_FindRecentActive(t *testing.T) {
	db := setupCatalogDB(t)
	repo := NewGormItemRepository(db)
	ctx := context.Background()

	var last *catalog.GiftItem
	for _, title := range []string{"Mug", "Frame", "Candle", "Basket"} {
		item := newTestItem(t, title, "gifts")
		require.NoError(t, repo.Save(ctx, item))
		last = item
		time.Sleep(time.Millisecond)
	}

	items, err := repo.FindRecentActive(ctx, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, last.ID, items[0].ID)
}

func TestGormInteractionRepository_FindByUserOrdering(t *testing.T) {
	db := setupCatalogDB(t)
	repo := NewGormInteractionRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	itemID := uuid.New()

	first, err := catalog.NewInteraction(userID, itemID, catalog.BehaviorView, nil)
	require.NoError(t, err)
	first.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Save(ctx, first))

	second, err := catalog.NewInteraction(userID, itemID, catalog.BehaviorPurchase, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, second))

	other, err := catalog.NewInteraction(uuid.New(), itemID, catalog.BehaviorView, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	interactions, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, interactions, 2)
	assert.Equal(t, catalog.BehaviorView, interactions[0].Behavior)
	assert.Equal(t, catalog.BehaviorPurchase, interactions[1].Behavior)
}

func TestGormInteractionRepository_FindByItemAndAll(t *testing.T) {
	db := setupCatalogDB(t)
	repo := NewGormInteractionRepository(db)
	ctx := context.Background()

	itemID := uuid.New()
	for i := 0; i < 3; i++ {
		interaction, err := catalog.NewInteraction(uuid.New(), itemID, catalog.BehaviorView, nil)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, interaction))
	}
	stray, err := catalog.NewInteraction(uuid.New(), uuid.New(), catalog.BehaviorView, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, stray))

	byItem, err := repo.FindByItem(ctx, itemID)
	require.NoError(t, err)
	assert.Len(t, byItem, 3)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
