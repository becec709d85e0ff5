package app

import (
	"context"
	"os"
	"path"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/plantee/storefront/config"
	"github.com/plantee/storefront/internal/assistant"
	"github.com/plantee/storefront/internal/checkout"
	"github.com/plantee/storefront/internal/domain"
	"github.com/plantee/storefront/internal/idempotency"
	"github.com/plantee/storefront/internal/notify"
	"github.com/plantee/storefront/internal/repository"
	"github.com/plantee/storefront/pkg/common"
	"github.com/plantee/storefront/pkg/metrics"
)

const (
	DBTypePostgres = "postgres"
	DBTypeSqlite   = "sqlite"
	DBTypeMongo    = "mongo"
	DBTypeMemory   = "memory"
)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	store     *repository.Store
	bus       EventBus.Bus
	checkout  *checkout.Service
	idem      *idempotency.Store
	assistant assistant.Client
	notifier  *notify.Notifier
	sched     *cron.Cron

	// background is false for maintenance runs next to a live server
	background bool
}

// Ensure Application implements all interfaces
var (
	_ ConfigProvider      = (*Application)(nil)
	_ StoreProvider       = (*Application)(nil)
	_ CheckoutProvider    = (*Application)(nil)
	_ IdempotencyProvider = (*Application)(nil)
	_ AssistantProvider   = (*Application)(nil)
	_ EventProvider       = (*Application)(nil)
	_ SchedulerProvider   = (*Application)(nil)
	_ AppContext          = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) Store() *repository.Store {
	return a.store
}

func (a *Application) Checkout() *checkout.Service {
	return a.checkout
}

func (a *Application) Idempotency() *idempotency.Store {
	return a.idem
}

func (a *Application) Assistant() assistant.Client {
	return a.assistant
}

// OverrideAssistant replaces the assistant client (used in tests).
func (a *Application) OverrideAssistant(c assistant.Client) {
	a.assistant = c
}

func (a *Application) Bus() EventBus.Bus {
	return a.bus
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// Init wires logging, metrics, the storage backend and every service. It
// must be called once before the application serves requests.
func (a *Application) Init() error {
	a.background = true
	return a.init()
}

// InitMaintenance wires logging, storage and the checkout service only. The
// metrics storage, idempotency store, mail notifier and cron jobs are left
// closed, so seed and migrate runs do not contend with a running server for
// their files.
func (a *Application) InitMaintenance() error {
	a.background = false
	return a.init()
}

func (a *Application) init() error {
	cfg := a.appConfig
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	initLogger(cfg)

	// Initialize metrics with workdir convention
	if a.background {
		if err := metrics.InitMetrics(cfg.System.Workdir); err != nil {
			zap.S().Warn("Failed to initialize metrics:", err)
		}
	}

	common.SetNodeID(cfg.Orders.NodeID)

	if err := os.MkdirAll(cfg.GetDataDir(), 0o700); err != nil {
		return errors.Wrap(err, "create data dir")
	}

	if cfg.Database.Type == "" {
		cfg.Database.Type = DBTypePostgres
	}
	if err := a.openStore(); err != nil {
		return err
	}
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	a.bus = EventBus.New()
	a.checkout = checkout.NewService(a.store.Plants, a.store.Orders,
		checkout.WithCompensation(cfg.Orders.CompensateOnFailure),
		checkout.WithPublisher(a.bus))

	if a.background && cfg.Idempotency.Enabled {
		a.idem, err = idempotency.Open(path.Join(cfg.GetDataDir(), "idempotency.db"),
			time.Duration(cfg.Idempotency.TTL)*time.Second)
		if err != nil {
			return err
		}
	}

	a.assistant = assistant.NewGeminiClient(cfg.Assistant)
	if cfg.Assistant.APIKey == "" {
		zap.L().Warn("assistant API key not set, chat endpoint disabled", zap.String("namespace", "assistant"))
	}

	if a.background && cfg.Mail.Enabled {
		a.notifier, err = notify.New(cfg.Mail, notify.NewDialerSender(cfg.Mail))
		if err != nil {
			return err
		}
	}

	if err := a.subscribe(); err != nil {
		return err
	}

	if cfg.System.SeedCatalog {
		a.checkPlants()
	}

	if a.background {
		a.initJob()
	}
	return nil
}

func initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

func (a *Application) openStore() error {
	dbcfg := a.appConfig.Database
	switch dbcfg.Type {
	case DBTypeMemory:
		a.store = repository.NewMemoryStore()
	case DBTypeMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(dbcfg.URI).SetMaxPoolSize(uint64(dbcfg.MaxConn)))
		if err != nil {
			return errors.Wrap(err, "connect mongodb")
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return errors.Wrap(err, "ping mongodb")
		}
		if err := repository.EnsureMongoIndexes(ctx, client, dbcfg.Name); err != nil {
			zap.L().Error("ensure mongodb indexes failed", zap.String("namespace", "db"), zap.Error(err))
		}
		a.store = repository.NewMongoStore(client, dbcfg.Name)
	case DBTypePostgres, DBTypeSqlite:
		db, err := getDatabase(dbcfg, a.appConfig.GetDataDir())
		if err != nil {
			return err
		}
		a.gormDB = db
		a.store = repository.NewGormStore(db)
	default:
		return errors.Errorf("unsupported database type %q", dbcfg.Type)
	}
	return nil
}

// MigrateDB creates or updates the SQL schema. Document and memory
// backends need no migration.
func (a *Application) MigrateDB(track bool) (err error) {
	if a.gormDB == nil {
		return nil
	}
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEBUG_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	db := a.gormDB
	if track {
		db = db.Debug()
	}
	return db.Migrator().AutoMigrate(domain.Tables...)
}

type subscription struct {
	topic string
	async bool
	fn    interface{}
}

// subscribe attaches metrics, logging and mail notifications to domain
// events. Mail handlers run asynchronously.
func (a *Application) subscribe() error {
	threshold := a.appConfig.System.LowStockThreshold
	subs := []subscription{
		{domain.TopicOrderPlaced, false, func(o *domain.Order) {
			metrics.Incr("orders_placed", 1)
		}},
		{domain.TopicOrderStatus, false, func(o *domain.Order) {
			zap.L().Info("order status changed",
				zap.String("namespace", "orders"),
				zap.String("id", o.ID),
				zap.String("status", o.Status))
		}},
		{domain.TopicStockReserved, false, func(p *domain.Plant, qty int) {
			metrics.Incr("stock_reserved", int64(qty))
			if p.StockQuantity <= threshold {
				zap.L().Warn("plant stock is low",
					zap.String("namespace", "catalog"),
					zap.String("id", p.ID),
					zap.String("name", p.Name),
					zap.Int("stock", p.StockQuantity))
			}
		}},
		{domain.TopicStockReleased, false, func(id string, qty int) {
			metrics.Incr("stock_released", int64(qty))
		}},
		{domain.TopicContactReceived, false, func(m *domain.ContactMessage) {
			metrics.Incr("contact_messages", 1)
		}},
	}
	if a.notifier != nil {
		subs = append(subs,
			subscription{domain.TopicOrderPlaced, true, a.notifier.OrderPlaced},
			subscription{domain.TopicContactReceived, true, a.notifier.ContactReceived},
		)
	}
	for _, s := range subs {
		var err error
		if s.async {
			err = a.bus.SubscribeAsync(s.topic, s.fn, false)
		} else {
			err = a.bus.Subscribe(s.topic, s.fn)
		}
		if err != nil {
			return errors.Wrapf(err, "subscribe %s", s.topic)
		}
	}
	return nil
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	if a.bus != nil {
		a.bus.WaitAsync()
	}
	if a.notifier != nil {
		a.notifier.Release()
	}
	if a.idem != nil {
		_ = a.idem.Close()
	}
	if a.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.store.Close(ctx)
		cancel()
	}
	if a.background {
		_ = metrics.Close()
	}
	_ = zap.L().Sync()
}
