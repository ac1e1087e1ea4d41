package ports

import (
	"context"
	"time"
)

// Таймерные джобы в памяти процесса. Ключ — (телефон, время старта).
type Scheduler interface {
	// Schedule регистрирует таймер; существующая джоба с тем же ключом
	// заменяется. false для времени в прошлом или при ошибке.
	Schedule(name, phone string, fireTime time.Time) bool

	// Cancel снимает первую джобу с этим телефоном и помечает контакт
	// Cancelled. false, если джобы нет (звонок мог уже уйти).
	Cancel(ctx context.Context, phone string) bool

	Jobs() int
}
