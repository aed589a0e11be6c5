package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StaleCanceller отменяет pending-заявки, время которых уже наступило
type StaleCanceller interface {
	CancelStale(ctx context.Context, now time.Time) (int, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	cron      *cron.Cron
	canceller StaleCanceller
	spec      string
	clock     func() time.Time
	logger    *zap.Logger
}

// NewScheduler создаёт новый планировщик; spec в синтаксисе cron ("@every 15m")
func NewScheduler(canceller StaleCanceller, spec string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		canceller: canceller,
		spec:      spec,
		clock:     time.Now,
		logger:    logger,
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Starting background scheduler", zap.String("schedule", s.spec))

	// Первый запуск сразу при старте
	s.RunOnce(ctx)

	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule stale request cleanup %q: %w", s.spec, err)
	}

	s.cron.Start()
	return nil
}

// Stop останавливает фоновые задачи и ждёт завершения текущей
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	<-s.cron.Stop().Done()
}

// RunOnce отменяет устаревшие заявки
func (s *Scheduler) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	n, err := s.canceller.CancelStale(ctx, s.clock())
	if err != nil {
		s.logger.Error("Failed to cancel stale change requests", zap.Error(err))
		return
	}

	s.logger.Debug("Stale change request cleanup completed", zap.Int("cancelled", n))
}
