package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/davicafu/eventreg/internal/config"
	eventApp "github.com/davicafu/eventreg/internal/event/application"
	eventDomain "github.com/davicafu/eventreg/internal/event/domain"
	eventHttp "github.com/davicafu/eventreg/internal/event/infra/inbound/http"
	eventPostgres "github.com/davicafu/eventreg/internal/event/infra/outbound/db/postgres"
	eventSQLite "github.com/davicafu/eventreg/internal/event/infra/outbound/db/sqlite"
	regApp "github.com/davicafu/eventreg/internal/registration/application"
	regDomain "github.com/davicafu/eventreg/internal/registration/domain"
	regEvents "github.com/davicafu/eventreg/internal/registration/infra/inbound/events"
	regHttp "github.com/davicafu/eventreg/internal/registration/infra/inbound/http"
	regClickHouse "github.com/davicafu/eventreg/internal/registration/infra/outbound/analytics/clickhouse"
	regMemory "github.com/davicafu/eventreg/internal/registration/infra/outbound/analytics/memory"
	regMongo "github.com/davicafu/eventreg/internal/registration/infra/outbound/analytics/mongodb"
	regPostgres "github.com/davicafu/eventreg/internal/registration/infra/outbound/db/postgres"
	regSQLite "github.com/davicafu/eventreg/internal/registration/infra/outbound/db/sqlite"
	sharedDomain "github.com/davicafu/eventreg/internal/shared/domain"
	sharedEvents "github.com/davicafu/eventreg/internal/shared/domain/events"
	infraEvents "github.com/davicafu/eventreg/internal/shared/infra/events"
	sharedHttp "github.com/davicafu/eventreg/internal/shared/infra/http"
	sharedBus "github.com/davicafu/eventreg/internal/shared/infra/platform/bus"
	sharedCache "github.com/davicafu/eventreg/internal/shared/infra/platform/cache"
	platformPostgres "github.com/davicafu/eventreg/internal/shared/infra/platform/db/postgres"
	platformSQLite "github.com/davicafu/eventreg/internal/shared/infra/platform/db/sqlite"
	"github.com/davicafu/eventreg/internal/shared/infra/relayer"
	sharedUtils "github.com/davicafu/eventreg/internal/shared/infra/utils"
	userApp "github.com/davicafu/eventreg/internal/user/application"
	userDomain "github.com/davicafu/eventreg/internal/user/domain"
	userEvents "github.com/davicafu/eventreg/internal/user/infra/inbound/events"
	userPostgres "github.com/davicafu/eventreg/internal/user/infra/outbound/db/postgres"
	userSQLite "github.com/davicafu/eventreg/internal/user/infra/outbound/db/sqlite"
	"github.com/davicafu/eventreg/internal/user/infra/outbound/filesystem"
	"github.com/davicafu/eventreg/pkg/logger"
)

const busBuffer = 64

// repositories agrupa los adaptadores de persistencia del driver elegido.
type repositories struct {
	events        eventDomain.EventRepository
	registrations regDomain.RegistrationRepository
	users         userDomain.UserRepository
	outbox        sharedDomain.OutboxRepository
}

// closers se ejecutan en orden inverso al apagar.
type closers []func()

func (c *closers) add(fn func()) { *c = append(*c, fn) }

func (c closers) closeAll() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// ---------------- Main ----------------
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Init("info")
		logger.Logger().Fatal("failed to load config", zap.Error(err))
	}

	logger.Init(cfg.LogLevel) // inicializa zap
	log := logger.Logger()    // obtiene logger estructurado
	defer log.Sync()          // flush buffers al salir

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cleanup closers
	defer cleanup.closeAll()

	// ---------------- DB ----------------
	db, repos, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("failed to open store", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	// El pool se cierra el último
	cleanup.add(func() {
		if err := db.Close(); err != nil {
			log.Warn("failed to close store", zap.Error(err))
		}
	})
	log.Info("✅ Store ready", zap.String("driver", cfg.DBDriver))

	// ---------------- Cache ----------------
	cacheInstance := openCache(ctx, cfg, log, &cleanup)

	// ---------------- Analytics ----------------
	activityLog, err := openActivityLog(ctx, cfg, log, &cleanup)
	if err != nil {
		log.Fatal("failed to open analytics backend", zap.String("backend", cfg.AnalyticsBackend), zap.Error(err))
	}

	// --------------- Servicios --------------
	eventService := eventApp.NewEventService(repos.events, cacheInstance, cfg.CacheTTL, log)
	registrationService := regApp.NewRegistrationService(repos.registrations, log)
	activityService := regApp.NewActivityService(activityLog, log)
	userService := userApp.NewUserService(repos.users, log)

	if cfg.UsersSeedFile != "" {
		applied, err := filesystem.NewJSONUserSeed(cfg.UsersSeedFile).Apply(ctx, userService)
		if err != nil {
			log.Fatal("failed to seed users", zap.String("file", cfg.UsersSeedFile), zap.Error(err))
		}
		log.Info("👥 Users seeded", zap.String("file", cfg.UsersSeedFile), zap.Int("count", applied))
	}

	// ---------------- Events ---------------
	userConsumer := userEvents.NewUserConsumer(userService, log)
	activityConsumer := regEvents.NewActivityConsumer(activityService, log)

	log.Info("Event bus selected", zap.String("bus", sharedUtils.Ternary(cfg.UseKafka, "kafka", "in-memory")))

	var publisher sharedBus.EventBus
	if cfg.UseKafka {
		writer := infraEvents.NewKafkaWriter(cfg.KafkaBrokers)
		cleanup.add(func() { _ = writer.Close() })
		publisher = infraEvents.NewKafkaPublisher(writer, log)

		userReader := infraEvents.NewKafkaReader(cfg.KafkaBrokers, userDomain.UserTopic, cfg.KafkaGroupID+"-users")
		activityReader := infraEvents.NewKafkaReader(cfg.KafkaBrokers, regDomain.RegistrationTopic, cfg.KafkaGroupID+"-activity")
		cleanup.add(func() { _ = userReader.Close() })
		cleanup.add(func() { _ = activityReader.Close() })

		infraEvents.NewConsumerAdapter(userReader, userConsumer, log).Start(ctx)
		infraEvents.NewConsumerAdapter(activityReader, activityConsumer, log).Start(ctx)
	} else {
		bus := infraEvents.NewInMemoryEventBus()
		cleanup.add(bus.Close)
		publisher = bus

		infraEvents.ConsumeChannel(ctx, bus.Subscribe(userDomain.UserTopic, busBuffer), userConsumer)
		infraEvents.ConsumeChannel(ctx, bus.Subscribe(regDomain.RegistrationTopic, busBuffer), activityConsumer)
	}

	// ------------ Outbox Worker ------------
	registry := sharedEvents.MergeRegistries(eventDomain.NewEventRegistry(), regDomain.NewEventRegistry())
	worker := relayer.NewOutboxWorker(repos.outbox, publisher, registry, cfg.OutboxPeriod, cfg.OutboxLimit, log)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()
	// El relayer debe terminar antes de cerrar el bus y el pool
	cleanup.add(func() { <-workerDone })

	// ---------------- HTTP ----------------
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), sharedHttp.RequestLogger(log), sharedHttp.RequestTimeout(cfg.RequestTimeout))
	router.GET("/health", sharedHttp.Health)
	eventHttp.RegisterEventRoutes(router, eventHttp.NewEventHandler(eventService, log))
	regHttp.RegisterRegistrationRoutes(router, regHttp.NewRegistrationHandler(registrationService, activityService, log))

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("🚀 Server running", zap.String("url", "http://localhost:"+cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("🛑 Shutdown signal received")
	case err := <-serverErr:
		log.Error("HTTP server failed", zap.Error(err))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server did not shut down cleanly", zap.Error(err))
	}
	// Cancela relayer y consumidores antes de cerrar bus, caché y pool
	stop()
	log.Info("👋 Server stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (*sql.DB, repositories, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := platformPostgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, repositories{}, err
		}
		if err := platformPostgres.InitSchema(ctx, db); err != nil {
			db.Close()
			return nil, repositories{}, err
		}
		return db, repositories{
			events:        eventPostgres.NewEventRepoPostgres(db),
			registrations: regPostgres.NewRegistrationRepoPostgres(db),
			users:         userPostgres.NewUserRepoPostgres(db),
			outbox:        platformPostgres.NewOutboxRepoPostgres(db),
		}, nil

	default:
		db, err := platformSQLite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, repositories{}, err
		}
		if err := platformSQLite.InitSchema(ctx, db); err != nil {
			db.Close()
			return nil, repositories{}, err
		}
		return db, repositories{
			events:        eventSQLite.NewEventRepoSQLite(db),
			registrations: regSQLite.NewRegistrationRepoSQLite(db),
			users:         userSQLite.NewUserRepoSQLite(db),
			outbox:        platformSQLite.NewOutboxRepoSQLite(db),
		}, nil
	}
}

// openCache usa Redis si responde; si no, una caché en memoria del proceso.
func openCache(ctx context.Context, cfg *config.Config, log *zap.Logger, cleanup *closers) sharedCache.Cache {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		log.Warn("⚠️ Redis no disponible, cache en memoria", zap.Error(err))
		mem := sharedCache.NewInMemoryCache(cfg.CacheTTL, 3*cfg.CacheTTL)
		cleanup.add(mem.Stop)
		return mem
	}

	cleanup.add(func() { _ = rdb.Close() })
	log.Info("✅ Redis conectado, cache habilitado", zap.String("addr", cfg.RedisAddr))
	return sharedCache.NewRedisCache(rdb, cfg.CacheTTL)
}

func openActivityLog(ctx context.Context, cfg *config.Config, log *zap.Logger, cleanup *closers) (regDomain.ActivityLog, error) {
	switch cfg.AnalyticsBackend {
	case config.AnalyticsClickHouse:
		store, err := regClickHouse.NewActivityLog(ctx, cfg.ClickHouseAddr, cfg.ClickHouseDB)
		if err != nil {
			return nil, err
		}
		cleanup.add(func() { _ = store.Close() })
		if err := store.InitSchema(ctx); err != nil {
			return nil, err
		}
		log.Info("📊 Analytics on ClickHouse", zap.String("addr", cfg.ClickHouseAddr))
		return store, nil

	case config.AnalyticsMongoDB:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, err
		}
		cleanup.add(func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		})
		store, err := regMongo.NewActivityLog(ctx, client, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		log.Info("📊 Analytics on MongoDB", zap.String("db", cfg.MongoDB))
		return store, nil

	default:
		log.Info("📊 Analytics in memory")
		return regMemory.NewActivityLog(), nil
	}
}
