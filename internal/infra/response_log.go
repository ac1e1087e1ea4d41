package infra

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/Vovarama1992/vaya_caller/internal/ports"
)

// responseLog — append-only csv. Файл открывается на каждую запись,
// чтобы лог переживал внешнее удаление/ротацию между звонками.
type responseLog struct {
	mu       sync.Mutex
	filename string
}

func NewResponseLog(filename string) ports.ResponseRecorder {
	return &responseLog{filename: filename}
}

func (l *responseLog) Record(ctx context.Context, rec ports.ResponseRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", l.filename, err)
	}
	defer f.Close()

	label := fmt.Sprintf("Q%d", rec.QuestionNumber)
	if rec.QuestionNumber <= 0 {
		label = "REC" // транскрипт всего звонка, не привязан к вопросу
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		label,
		rec.QuestionText,
		rec.AnswerText,
		rec.RespondentName,
		rec.Confidence,
		rec.RecordedAt.Format(timeLayout),
	}); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func (l *responseLog) All(ctx context.Context) ([][]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", l.filename, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.filename, err)
	}
	return rows, nil
}
