package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

const DefaultTimeSlotCacheSize = 256

// TimeSlotCatalog справочник слотов с LRU-кэшем.
// Кэшируется только справочник: записи Availability и уроки всегда читаются заново.
type TimeSlotCatalog struct {
	source TimeSlotSource
	logger *zap.Logger

	mu     sync.RWMutex
	cache  *lru.Cache[int64, model.TimeSlot]
	loaded int // сколько слотов положили при последней загрузке
}

func NewTimeSlotCatalog(source TimeSlotSource, size int, logger *zap.Logger) (*TimeSlotCatalog, error) {
	if size <= 0 {
		size = DefaultTimeSlotCacheSize
	}

	cache, err := lru.New[int64, model.TimeSlot](size)
	if err != nil {
		return nil, fmt.Errorf("create time slot cache: %w", err)
	}

	return &TimeSlotCatalog{
		source: source,
		logger: logger,
		cache:  cache,
	}, nil
}

// List все слоты по времени начала
func (c *TimeSlotCatalog) List(ctx context.Context) ([]model.TimeSlot, error) {
	if slots, ok := c.cached(); ok {
		return slots, nil
	}
	return c.reload(ctx)
}

// Get слот по ID; nil, если его нет в справочнике
func (c *TimeSlotCatalog) Get(ctx context.Context, id int64) (*model.TimeSlot, error) {
	if slot, ok := c.peek(id); ok {
		return &slot, nil
	}

	// Полный кэш без этого ID: слота нет, источник не трогаем
	slots, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range slots {
		if slots[i].ID == id {
			return &slots[i], nil
		}
	}
	return nil, nil
}

// Attach заполняет Availability.Slot из справочника.
// Источник читается не больше одного раза за вызов.
// Записи с неизвестным SlotID остаются без слота.
func (c *TimeSlotCatalog) Attach(ctx context.Context, avails []*model.Availability) error {
	var missing []*model.Availability
	for _, a := range avails {
		if a == nil || a.Slot != nil {
			continue
		}
		if slot, ok := c.peek(a.SlotID); ok {
			a.Slot = &slot
			continue
		}
		missing = append(missing, a)
	}
	if len(missing) == 0 {
		return nil
	}

	slots, err := c.List(ctx)
	if err != nil {
		return err
	}
	byID := indexSlots(slots)

	for _, a := range missing {
		slot, ok := byID[a.SlotID]
		if !ok {
			c.logger.Warn("Time slot not found for availability",
				zap.Int64("availability_id", a.ID),
				zap.Int64("slot_id", a.SlotID),
			)
			continue
		}
		a.Slot = &slot
	}
	return nil
}

// Invalidate сбрасывает кэш (после правки справочника администратором)
func (c *TimeSlotCatalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Purge()
	c.loaded = 0
}

func (c *TimeSlotCatalog) peek(id int64) (model.TimeSlot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache.Get(id)
}

func (c *TimeSlotCatalog) cached() ([]model.TimeSlot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// Часть слотов вытеснена, список неполный
	if c.loaded == 0 || c.cache.Len() != c.loaded {
		return nil, false
	}

	slots := c.cache.Values()
	sortTimeSlots(slots)
	return slots, true
}

func (c *TimeSlotCatalog) reload(ctx context.Context) ([]model.TimeSlot, error) {
	slots, err := c.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Purge()
	for _, slot := range slots {
		c.cache.Add(slot.ID, slot)
	}
	c.loaded = len(slots)

	c.logger.Debug("Time slot catalog loaded", zap.Int("count", len(slots)))

	result := make([]model.TimeSlot, len(slots))
	copy(result, slots)
	sortTimeSlots(result)
	return result, nil
}

func sortTimeSlots(slots []model.TimeSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].StartTime != slots[j].StartTime {
			return slots[i].StartTime < slots[j].StartTime
		}
		return slots[i].ID < slots[j].ID
	})
}
