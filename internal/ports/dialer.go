package ports

import "context"

// Dialer places the actual outbound call.
type Dialer interface {
	// Dial — для запланированных звонков: CAS Scheduled -> In Progress,
	// потом созвон. Возвращает "" без ошибки, если контакт уже увели.
	Dial(ctx context.Context, name, phone string) (string, error)

	// DialDirect — немедленный звонок без строки в таблице.
	DialDirect(ctx context.Context, name, phone string) (string, error)
}
