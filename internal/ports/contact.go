package ports

import (
	"context"
	"time"
)

type ContactStatus string

const (
	StatusScheduled  ContactStatus = "Scheduled"
	StatusInProgress ContactStatus = "In Progress"
	StatusCompleted  ContactStatus = "Completed"
	StatusFailed     ContactStatus = "Failed"
	StatusCancelled  ContactStatus = "Cancelled"
)

// DTO для одной строки таблицы контактов
type Contact struct {
	Name          string
	Phone         string
	ScheduledTime time.Time
	Status        ContactStatus
	CreatedAt     time.Time
}

// Хранилище контактов (xlsx). Все методы сериализуются внутренним мьютексом,
// поэтому их можно звать из хендлеров, таймеров и поллера одновременно.
type ContactStore interface {
	Add(ctx context.Context, name, phone string, scheduledTime time.Time) bool

	// UpdateStatus меняет статус у всех строк с этим телефоном.
	UpdateStatus(ctx context.Context, phone string, status ContactStatus) bool

	// TransitionStatus — compare-and-swap: первая строка с этим телефоном,
	// которая ещё в статусе from. false = кто-то успел раньше.
	TransitionStatus(ctx context.Context, phone string, from, to ContactStatus) bool

	GetAll(ctx context.Context) ([]Contact, error)

	// GetPending — строки Scheduled, чьё время уже наступило.
	GetPending(ctx context.Context, now time.Time) ([]Contact, error)

	Delete(ctx context.Context, phone string) bool
}
