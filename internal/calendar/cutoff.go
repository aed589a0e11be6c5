package calendar

import (
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

// Минимальное время до урока по умолчанию
const (
	DefaultLearnerCutoff = 24 * time.Hour
	DefaultTutorCutoff   = 12 * time.Hour
)

// CutoffPolicy минимальное время до начала урока для каждой роли
type CutoffPolicy map[model.InitiatorRole]time.Duration

// DefaultCutoffPolicy ученик 24 часа, учитель 12 часов
func DefaultCutoffPolicy() CutoffPolicy {
	return NewCutoffPolicy(DefaultLearnerCutoff, DefaultTutorCutoff)
}

func NewCutoffPolicy(learner, tutor time.Duration) CutoffPolicy {
	return CutoffPolicy{
		model.RoleLearner: learner,
		model.RoleTutor:   tutor,
	}
}

// LeadTime возвращает минимальный запас времени для роли
func (p CutoffPolicy) LeadTime(role model.InitiatorRole) (time.Duration, bool) {
	lead, ok := p[role]
	return lead, ok
}

// IsEligible target - now >= lead. Прошедшее время и неизвестная роль: всегда false.
func (p CutoffPolicy) IsEligible(target, now time.Time, role model.InitiatorRole) bool {
	lead, ok := p.LeadTime(role)
	if !ok {
		return false
	}

	if target.IsZero() || !target.After(now) {
		return false
	}

	return target.Sub(now) >= lead
}
