package interview

import (
	"context"
	"fmt"
	"time"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/vaya_caller/internal/ports"
)

type StepKind int

const (
	StepGreeting StepKind = iota
	StepAsk
	StepDone
	StepApology
)

// Step описывает следующее голосовое действие. Сессия не живёт на сервере:
// всё состояние (номер вопроса, имя) ездит в URL следующего шага.
type Step struct {
	Kind   StepKind
	Say    string // приветствие / прощание / извинение
	Prompt string // текст вопроса для gather

	// ActionIndex — куда провайдер принесёт ответ; RepromptIndex — куда
	// редиректить по таймауту, чтобы повторить тот же вопрос.
	ActionIndex   int
	RepromptIndex int
}

type Service struct {
	questions *Questions
	recorder  ports.ResponseRecorder
	store     ports.ContactStore
	log       *logger.ZapLogger
}

func NewService(questions *Questions, recorder ports.ResponseRecorder, store ports.ContactStore, log *logger.ZapLogger) *Service {
	return &Service{
		questions: questions,
		recorder:  recorder,
		store:     store,
		log:       log,
	}
}

// Входящее webhook-событие: индекс из URL, распознанная речь (если была)
// и телефон собеседника.
type StepInput struct {
	Index      int
	Speech     string
	Confidence string
	Phone      string
	Name       string
}

const (
	closingText = "Thanks for your answers. We've recorded your responses. Goodbye!"
	apologyText = "We're sorry, something went wrong on our end. We'll be in touch. Goodbye."
)

// Step продвигает сессию на один шаг. Никогда не возвращает ошибку:
// любой внутренний сбой превращается в StepApology, чтобы собеседник
// не остался висеть в тишине.
func (s *Service) Step(ctx context.Context, in StepInput) Step {
	n := s.questions.Len()
	if n == 0 || in.Index < 0 {
		s.log.Log(logger.LogEntry{
			Level:   "error",
			Message: fmt.Sprintf("interview: bad step, questions=%d index=%d", n, in.Index),
		})
		return Step{Kind: StepApology, Say: apologyText}
	}

	if in.Index == 0 {
		welcome := "Welcome to the HR interview. Let's begin."
		if in.Name != "" {
			welcome = fmt.Sprintf("Hello %s, welcome to the HR interview. Let's begin.", in.Name)
		}
		first, _ := s.questions.Prompt(1)
		return Step{
			Kind:          StepGreeting,
			Say:           welcome,
			Prompt:        first,
			ActionIndex:   1,
			RepromptIndex: 0,
		}
	}

	s.saveAnswer(ctx, in, n)

	if in.Index < n {
		next, _ := s.questions.Prompt(in.Index + 1)
		return Step{
			Kind:          StepAsk,
			Prompt:        next,
			ActionIndex:   in.Index + 1,
			RepromptIndex: in.Index,
		}
	}

	// последний вопрос отвечен (или индекс за границей списка)
	if in.Phone != "" {
		if ok := s.store.UpdateStatus(ctx, in.Phone, ports.StatusCompleted); !ok {
			s.log.Log(logger.LogEntry{
				Level:   "warn",
				Message: "interview: could not mark contact completed: " + in.Phone,
			})
		}
	}
	return Step{Kind: StepDone, Say: closingText}
}

// saveAnswer пишет ответ в лог. Пустая речь — не ошибка, просто нет строки.
// Сбой записи тоже не валит звонок: потерянный ответ лучше брошенной трубки.
func (s *Service) saveAnswer(ctx context.Context, in StepInput, n int) {
	if in.Speech == "" {
		s.log.Log(logger.LogEntry{
			Level:   "info",
			Message: fmt.Sprintf("interview: no answer for question %d", in.Index),
		})
		return
	}
	if in.Index > n {
		return
	}

	text, _ := s.questions.Prompt(in.Index)
	err := s.recorder.Record(ctx, ports.ResponseRecord{
		QuestionNumber: in.Index,
		QuestionText:   text,
		AnswerText:     in.Speech,
		RespondentName: in.Name,
		Confidence:     in.Confidence,
		RecordedAt:     time.Now(),
	})
	if err != nil {
		s.log.Log(logger.LogEntry{
			Level:   "error",
			Message: fmt.Sprintf("interview: failed to save answer for question %d", in.Index),
			Error:   err,
		})
	}
}
