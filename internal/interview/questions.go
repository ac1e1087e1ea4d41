package interview

import (
	"encoding/json"
	"fmt"
	"os"
)

// Список вопросов грузится один раз на старте и дальше не меняется.
type Questions struct {
	prompts []string
}

func NewQuestions(prompts []string) *Questions {
	return &Questions{prompts: prompts}
}

// LoadQuestions читает JSON-массив строк.
func LoadQuestions(path string) (*Questions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var prompts []string
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(prompts) == 0 {
		return nil, fmt.Errorf("%s: question list is empty", path)
	}

	return &Questions{prompts: prompts}, nil
}

func (q *Questions) Len() int {
	if q == nil {
		return 0
	}
	return len(q.prompts)
}

// Prompt — текст вопроса по 1-based номеру.
func (q *Questions) Prompt(n int) (string, bool) {
	if q == nil || n < 1 || n > len(q.prompts) {
		return "", false
	}
	return q.prompts[n-1], true
}
