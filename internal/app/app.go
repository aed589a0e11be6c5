package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/lesson_scheduler/internal/config"
	"github.com/Freeeeeet/lesson_scheduler/internal/events"
	"github.com/Freeeeeet/lesson_scheduler/internal/repository"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
)

// App собранные зависимости процесса
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Pool   *pgxpool.Pool

	Catalog        *service.TimeSlotCatalog
	Availability   *service.AvailabilityService
	ChangeRequests *service.ChangeRequestService
	Publisher      events.Publisher
}

// New подключается к базе и собирает сервисы
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("Connected to database")

	publisher, err := NewPublisher(ctx, cfg)
	if err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("Event publisher ready", zap.String("backend", cfg.EventsBackend))

	timeSlotRepo := repository.NewTimeSlotRepository(pool)
	availabilityRepo := repository.NewAvailabilityRepository(pool)
	scheduleRepo := repository.NewScheduleRepository(pool)
	changeRequestRepo := repository.NewChangeRequestRepository(pool)
	store := repository.NewStore(pool, logger)

	catalog, err := service.NewTimeSlotCatalog(timeSlotRepo, cfg.TimeSlotCacheSize, logger)
	if err != nil {
		publisher.Close()
		pool.Close()
		return nil, err
	}

	loader := service.NewSnapshotLoader(catalog, availabilityRepo, scheduleRepo, cfg.Location(), logger)
	policy := cfg.CutoffPolicy()

	return &App{
		Config:       cfg,
		Logger:       logger,
		Pool:         pool,
		Catalog:      catalog,
		Availability: service.NewAvailabilityService(loader, policy, logger),
		ChangeRequests: service.NewChangeRequestService(store, changeRequestRepo, catalog, publisher, service.ChangeRequestSettings{
			Policy:          policy,
			ReasonMaxLength: cfg.ReasonMaxLength,
			Location:        cfg.Location(),
		}, logger),
		Publisher: publisher,
	}, nil
}

// NewPublisher выбирает доставку событий по EVENTS_BACKEND
func NewPublisher(ctx context.Context, cfg *config.Config) (events.Publisher, error) {
	switch cfg.EventsBackend {
	case config.EventsBackendRedis:
		return events.NewRedisPublisher(ctx, events.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Channel:  cfg.RedisChannel,
		})
	case config.EventsBackendAMQP:
		return events.NewAMQPPublisher(events.AMQPConfig{
			URL:      cfg.AMQPURL,
			Exchange: cfg.AMQPExchange,
		})
	default:
		return events.NoopPublisher{}, nil
	}
}

// Migrator мигратор на пуле приложения
func (a *App) Migrator() (*Migrator, error) {
	return NewMigrator(a.Pool, a.Logger)
}

// Scheduler планировщик отмены устаревших заявок
func (a *App) Scheduler() *Scheduler {
	return NewScheduler(a.ChangeRequests, a.Config.JanitorSchedule, a.Logger)
}

func (a *App) Close() {
	if err := a.Publisher.Close(); err != nil {
		a.Logger.Warn("Failed to close event publisher", zap.Error(err))
	}
	a.Pool.Close()
	a.Logger.Info("Shutdown complete")
	_ = a.Logger.Sync()
}
