package repository

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/plantee/storefront/internal/domain"
	"github.com/plantee/storefront/pkg/common"
)

type storeFactory func(t *testing.T) *Store

func backends() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) *Store { return NewMemoryStore() },
		"sqlite": newSQLiteStore,
		"mongo":  newMongoStore,
	}
}

func newSQLiteStore(t *testing.T) *Store {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "plantee.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	s := NewGormStore(db)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

// newMongoStore runs against a live server only when PLANTEE_TEST_MONGO_URI
// is set.
func newMongoStore(t *testing.T) *Store {
	uri := os.Getenv("PLANTEE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("PLANTEE_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	dbName := "plantee_test_" + common.NewID()
	require.NoError(t, EnsureMongoIndexes(ctx, client, dbName))
	s := NewMongoStore(client, dbName)
	t.Cleanup(func() {
		_ = client.Database(dbName).Drop(context.Background())
		_ = s.Close(context.Background())
	})
	return s
}

func seedPlants(t *testing.T, repo PlantRepository, stock ...int) []domain.Plant {
	t.Helper()
	base := common.Now()
	plants := make([]domain.Plant, len(stock))
	// insert newest first so listing order cannot come from insertion order
	for i := len(stock) - 1; i >= 0; i-- {
		p := domain.Plant{
			Name:          domain.CatalogSeed[i%len(domain.CatalogSeed)].Name,
			Description:   "test plant",
			Price:         10 + float64(i),
			ImageURL:      "/assets/img/test.png",
			Category:      "Indoor",
			StockQuantity: stock[i],
			CreatedAt:     base.Add(time.Duration(i) * time.Millisecond),
		}
		require.NoError(t, repo.Create(context.Background(), &p))
		plants[i] = p
	}
	return plants
}

func TestPlantRepository(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t).Plants
			seeded := seedPlants(t, repo, 10, 15, 8)

			t.Run("list in catalog order", func(t *testing.T) {
				plants, err := repo.List(ctx)
				require.NoError(t, err)
				require.Len(t, plants, 3)
				for i := range seeded {
					assert.Equal(t, seeded[i].ID, plants[i].ID)
				}
			})

			t.Run("get", func(t *testing.T) {
				p, err := repo.Get(ctx, seeded[1].ID)
				require.NoError(t, err)
				assert.Equal(t, seeded[1].Name, p.Name)
				assert.Equal(t, 15, p.StockQuantity)
				assert.True(t, seeded[1].CreatedAt.Equal(p.CreatedAt))
			})

			t.Run("get malformed or unknown id", func(t *testing.T) {
				_, err := repo.Get(ctx, "1")
				assert.ErrorIs(t, err, ErrNotFound)
				_, err = repo.Get(ctx, common.NewID())
				assert.ErrorIs(t, err, ErrNotFound)
			})

			t.Run("update", func(t *testing.T) {
				p := seeded[2]
				p.Price = 99.5
				p.Category = "Outdoor"
				require.NoError(t, repo.Update(ctx, &p))

				got, err := repo.Get(ctx, p.ID)
				require.NoError(t, err)
				assert.Equal(t, 99.5, got.Price)
				assert.Equal(t, "Outdoor", got.Category)

				missing := domain.Plant{ID: common.NewID(), Name: "x"}
				assert.ErrorIs(t, repo.Update(ctx, &missing), ErrNotFound)
			})

			t.Run("count and low stock", func(t *testing.T) {
				n, err := repo.Count(ctx)
				require.NoError(t, err)
				assert.Equal(t, int64(3), n)

				low, err := repo.LowStock(ctx, 8)
				require.NoError(t, err)
				require.Len(t, low, 1)
				assert.Equal(t, seeded[2].ID, low[0].ID)
			})

			t.Run("delete", func(t *testing.T) {
				require.NoError(t, repo.Delete(ctx, seeded[0].ID))
				assert.ErrorIs(t, repo.Delete(ctx, seeded[0].ID), ErrNotFound)
				_, err := repo.Get(ctx, seeded[0].ID)
				assert.ErrorIs(t, err, ErrNotFound)

				require.NoError(t, repo.DeleteAll(ctx))
				n, err := repo.Count(ctx)
				require.NoError(t, err)
				assert.Zero(t, n)
			})
		})
	}
}

func TestReserveAndRelease(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t).Plants
			p := seedPlants(t, repo, 5)[0]

			got, err := repo.Reserve(ctx, p.ID, 3)
			require.NoError(t, err)
			assert.Equal(t, 2, got.StockQuantity)

			got, err = repo.Reserve(ctx, p.ID, 3)
			assert.ErrorIs(t, err, ErrInsufficientStock)
			require.NotNil(t, got)
			assert.Equal(t, 2, got.StockQuantity)

			require.NoError(t, repo.Release(ctx, p.ID, 3))
			got, err = repo.Get(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, 5, got.StockQuantity)

			_, err = repo.Reserve(ctx, common.NewID(), 1)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, repo.Release(ctx, common.NewID(), 1), ErrNotFound)
		})
	}
}

func TestConcurrentReserveNeverOversells(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t).Plants
			p := seedPlants(t, repo, 5)[0]

			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				successes int
				failures  int
			)
			for i := 0; i < 2; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := repo.Reserve(ctx, p.ID, 3)
					mu.Lock()
					defer mu.Unlock()
					if err == nil {
						successes++
					} else if assert.ErrorIs(t, err, ErrInsufficientStock) {
						failures++
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, 1, successes)
			assert.Equal(t, 1, failures)
			got, err := repo.Get(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, 2, got.StockQuantity)
		})
	}
}

func TestOrderRepository(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)
			plants := seedPlants(t, store.Plants, 5, 5)
			base := common.Now()

			first := &domain.Order{
				OrderNumber: common.OrderNumber(),
				User:        domain.Buyer{Name: "Ada", Email: "ada@example.com", Address: "1 Fern Way"},
				Items: []domain.OrderItem{
					{Plant: plants[1].ID, Quantity: 2, Price: 11},
					{Plant: plants[0].ID, Quantity: 1, Price: 10},
				},
				TotalAmount: 32,
				Status:      domain.OrderStatusPending,
				CreatedAt:   base,
			}
			second := &domain.Order{
				OrderNumber: common.OrderNumber(),
				User:        domain.Buyer{Name: "Bo", Email: "bo@example.com", Address: "2 Moss Rd"},
				Items:       []domain.OrderItem{{Plant: plants[0].ID, Quantity: 1, Price: 10}},
				TotalAmount: 10,
				Status:      domain.OrderStatusPending,
				CreatedAt:   base.Add(time.Second),
			}
			require.NoError(t, store.Orders.Create(ctx, first))
			require.NoError(t, store.Orders.Create(ctx, second))
			require.Len(t, first.ID, 24)

			got, err := store.Orders.Get(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, first.User, got.User)
			assert.Equal(t, first.OrderNumber, got.OrderNumber)
			assert.Equal(t, 32.0, got.TotalAmount)
			require.Len(t, got.Items, 2)
			assert.Equal(t, plants[1].ID, got.Items[0].Plant)
			assert.Equal(t, 2, got.Items[0].Quantity)
			assert.Equal(t, 11.0, got.Items[0].Price)
			assert.Equal(t, plants[0].ID, got.Items[1].Plant)

			orders, err := store.Orders.List(ctx)
			require.NoError(t, err)
			require.Len(t, orders, 2)
			assert.Equal(t, second.ID, orders[0].ID)
			assert.Equal(t, first.ID, orders[1].ID)

			updated, err := store.Orders.UpdateStatus(ctx, first.ID, domain.OrderStatusShipped)
			require.NoError(t, err)
			assert.Equal(t, domain.OrderStatusShipped, updated.Status)
			require.Len(t, updated.Items, 2)

			_, err = store.Orders.UpdateStatus(ctx, common.NewID(), domain.OrderStatusShipped)
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = store.Orders.Get(ctx, "not-an-id")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestContactRepository(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t).Contacts
			base := common.Now()

			older := &domain.ContactMessage{Name: "A", Email: "a@example.com", Message: "hi", CreatedAt: base}
			newer := &domain.ContactMessage{Name: "B", Email: "b@example.com", Message: "hello", CreatedAt: base.Add(time.Minute)}
			require.NoError(t, repo.Create(ctx, older))
			require.NoError(t, repo.Create(ctx, newer))

			msgs, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, msgs, 2)
			assert.Equal(t, newer.ID, msgs[0].ID)
			assert.Equal(t, "hello", msgs[0].Message)
			assert.Equal(t, older.ID, msgs[1].ID)
		})
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := seedPlants(t, store.Plants, 4)[0]

	got, err := store.Plants.Get(ctx, p.ID)
	require.NoError(t, err)
	got.StockQuantity = 0

	again, err := store.Plants.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, again.StockQuantity)
}
