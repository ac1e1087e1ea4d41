package ports

import (
	"context"
	"time"
)

// DTO для одного записанного ответа
type ResponseRecord struct {
	QuestionNumber int // 1-based; <= 0 — транскрипт всего звонка
	QuestionText   string
	AnswerText     string
	RespondentName string
	Confidence     string
	RecordedAt     time.Time
}

// Append-only лог ответов. Старые строки никогда не переписываются.
type ResponseRecorder interface {
	Record(ctx context.Context, rec ResponseRecord) error
	All(ctx context.Context) ([][]string, error)
}
