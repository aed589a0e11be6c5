package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
)

// Store транзакционная граница для заявок на перенос
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewStore(pool *pgxpool.Pool, logger *zap.Logger) *Store {
	return &Store{pool: pool, logger: logger}
}

// InTx выполняет fn в транзакции READ COMMITTED.
// Блокировки строк (FOR UPDATE) сериализуют конкурентные заявки на один урок.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx service.ChangeRequestTx) error) error {
	// Начинаем транзакцию
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Warn("Rollback failed", zap.Error(rbErr))
		}
	}()

	if err := fn(ctx, newTxRepos(tx)); err != nil {
		return err
	}

	// Коммитим транзакцию
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// txRepos репозитории, привязанные к одной транзакции
type txRepos struct {
	schedules *ScheduleRepository
	avails    *AvailabilityRepository
	requests  *ChangeRequestRepository
}

func newTxRepos(tx pgx.Tx) *txRepos {
	return &txRepos{
		schedules: NewScheduleRepository(tx),
		avails:    NewAvailabilityRepository(tx),
		requests:  NewChangeRequestRepository(tx),
	}
}

func (t *txRepos) LockSchedule(ctx context.Context, scheduleID int64) (*model.Schedule, error) {
	return t.schedules.LockByID(ctx, scheduleID)
}

func (t *txRepos) LockAvailability(ctx context.Context, availabilityID int64) (*model.Availability, error) {
	return t.avails.LockByID(ctx, availabilityID)
}

func (t *txRepos) ListPartySchedules(ctx context.Context, email string, status model.ScheduleStatus) ([]*model.Schedule, error) {
	return t.schedules.ListByParty(ctx, email, &status)
}

func (t *txRepos) ListChangeRequests(ctx context.Context, scheduleID int64, status *model.ChangeRequestStatus) ([]*model.ScheduleChangeRequest, error) {
	return t.requests.ListByScheduleID(ctx, scheduleID, status)
}

func (t *txRepos) CreateChangeRequest(ctx context.Context, req *model.ScheduleChangeRequest) error {
	return t.requests.Create(ctx, req)
}

func (t *txRepos) LockChangeRequest(ctx context.Context, id int64) (*model.ScheduleChangeRequest, error) {
	return t.requests.LockByID(ctx, id)
}

func (t *txRepos) UpdateChangeRequestStatus(ctx context.Context, id int64, status model.ChangeRequestStatus, resolvedAt time.Time) error {
	return t.requests.UpdateStatus(ctx, id, status, resolvedAt)
}
