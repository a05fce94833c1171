package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type RuleRepository interface {
	Create(ctx context.Context, r *Rule) error

	// ListByCalendar returns every recurring rule for one calendar.
	ListByCalendar(ctx context.Context, calendarID uuid.UUID) ([]*Rule, error)

	// Delete removes a single rule. Returns ErrRuleNotFound if missing.
	Delete(ctx context.Context, id uuid.UUID) error
}

type ExceptionRepository interface {
	Create(ctx context.Context, e *Exception) error

	// GetByCalendarAndDate returns the exception for one calendar date, or
	// ErrExceptionNotFound when the date has no override.
	GetByCalendarAndDate(ctx context.Context, calendarID uuid.UUID, date time.Time) (*Exception, error)

	// ListByCalendarRange returns exceptions whose date falls in [from, to].
	ListByCalendarRange(ctx context.Context, calendarID uuid.UUID, from, to time.Time) ([]*Exception, error)

	Delete(ctx context.Context, id uuid.UUID) error
}
