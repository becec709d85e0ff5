package app

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/plantee/storefront/config"
	"github.com/plantee/storefront/internal/domain"
	"github.com/plantee/storefront/pkg/common"
)

// getDatabase opens a gorm connection for the postgres or sqlite backend.
// A relative sqlite name is placed under dataDir.
func getDatabase(cfg config.DBConfig, dataDir string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case DBTypeSqlite:
		name := cfg.Name
		if filepath.Ext(name) == "" {
			name += ".db"
		}
		if !filepath.IsAbs(name) {
			name = path.Join(dataDir, name)
		}
		dialector = sqlite.Open(name)
	default:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name)
		dialector = postgres.Open(dsn)
	}

	level := logger.Silent
	if cfg.Debug {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(level),
		NowFunc: common.Now,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", cfg.Type)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql db")
	}
	if cfg.Type == DBTypeSqlite {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxConn)
		sqlDB.SetMaxIdleConns(cfg.IdleConn)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	return db, nil
}

// checkPlants seeds the built-in catalog into an empty store
func (a *Application) checkPlants() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	n, err := a.SeedCatalog(ctx, false)
	if err != nil {
		zap.L().Error("failed to seed catalog", zap.String("namespace", "catalog"), zap.Error(err))
		return
	}
	if n > 0 {
		zap.L().Info("initialized default catalog", zap.String("namespace", "catalog"), zap.Int("plants", n))
	}
}

// SeedCatalog inserts the built-in plants and returns how many were added.
// Seeded plants get increasing creation times ending at the current time,
// so catalog order follows the seed order and plants created later sort
// after them.
func (a *Application) SeedCatalog(ctx context.Context, force bool) (int, error) {
	plants := a.store.Plants
	if force {
		if err := plants.DeleteAll(ctx); err != nil {
			return 0, err
		}
	} else {
		count, err := plants.Count(ctx)
		if err != nil {
			return 0, err
		}
		if count > 0 {
			return 0, nil
		}
	}

	base := common.Now().Add(-time.Duration(len(domain.CatalogSeed)-1) * time.Millisecond)
	for i := range domain.CatalogSeed {
		p := domain.CatalogSeed[i]
		p.ID = common.NewID()
		p.CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
		if err := plants.Create(ctx, &p); err != nil {
			return i, err
		}
	}
	return len(domain.CatalogSeed), nil
}
