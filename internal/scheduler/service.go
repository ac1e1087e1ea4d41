package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/vaya_caller/internal/ports"
)

const fireTimeout = 30 * time.Second

// Service держит таймеры в памяти процесса. Джобы не переживают рестарт:
// на старте они восстанавливаются из таблицы контактов (RestoreFromStore),
// а всё просроченное добирает поллер.
type Service struct {
	mu     sync.Mutex
	jobs   map[string]*time.Timer
	store  ports.ContactStore
	dialer ports.Dialer
	log    *logger.ZapLogger
}

func NewService(store ports.ContactStore, dialer ports.Dialer, log *logger.ZapLogger) *Service {
	return &Service{
		jobs:   make(map[string]*time.Timer),
		store:  store,
		dialer: dialer,
		log:    log,
	}
}

func jobKey(phone string, fireTime time.Time) string {
	return fmt.Sprintf("call_%s_%d", phone, fireTime.Unix())
}

// Schedule регистрирует таймер. Джоба с тем же ключом заменяется,
// а не дублируется.
func (s *Service) Schedule(name, phone string, fireTime time.Time) bool {
	delay := time.Until(fireTime)
	if delay <= 0 {
		s.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: fmt.Sprintf("scheduler: fire time already passed for %s (%s)", phone, fireTime),
		})
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := jobKey(phone, fireTime)
	if prev, ok := s.jobs[key]; ok {
		prev.Stop()
	}
	s.jobs[key] = time.AfterFunc(delay, func() {
		s.fire(key, name, phone)
	})

	s.log.Log(logger.LogEntry{
		Level:   "info",
		Message: fmt.Sprintf("scheduler: call for %s (%s) at %s", name, phone, fireTime.Format("2006-01-02 15:04:05")),
	})
	return true
}

func (s *Service) fire(key, name, phone string) {
	s.mu.Lock()
	delete(s.jobs, key)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), fireTimeout)
	defer cancel()

	// Dialer сам ставит Failed и шлёт алерт; тут достаточно залогировать.
	if _, err := s.dialer.Dial(ctx, name, phone); err != nil {
		s.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "scheduler: scheduled call failed for " + phone,
			Error:   err,
		})
	}
}

// Cancel снимает первую джобу с этим телефоном. Уже ушедший звонок
// отменить нельзя.
func (s *Service) Cancel(ctx context.Context, phone string) bool {
	s.mu.Lock()
	var found string
	for key, t := range s.jobs {
		if strings.Contains(key, phone) {
			t.Stop()
			delete(s.jobs, key)
			found = key
			break
		}
	}
	s.mu.Unlock()

	if found == "" {
		return false
	}

	s.store.UpdateStatus(ctx, phone, ports.StatusCancelled)
	s.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "scheduler: cancelled call for " + phone,
	})
	return true
}

// RestoreFromStore пересоздаёт таймеры для будущих Scheduled-контактов.
// Просроченные тут не трогаем — их заберёт поллер, иначе на старте
// возможен двойной прозвон.
func (s *Service) RestoreFromStore(ctx context.Context) {
	contacts, err := s.store.GetAll(ctx)
	if err != nil {
		s.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "scheduler: restore failed",
			Error:   err,
		})
		return
	}

	now := time.Now()
	restored := 0
	for _, c := range contacts {
		if c.Status == ports.StatusScheduled && c.ScheduledTime.After(now) {
			if s.Schedule(c.Name, c.Phone, c.ScheduledTime) {
				restored++
			}
		}
	}

	s.log.Log(logger.LogEntry{
		Level:   "info",
		Message: fmt.Sprintf("scheduler: restored %d pending jobs", restored),
	})
}

func (s *Service) Jobs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Shutdown гасит все таймеры, статусы контактов не трогает.
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.jobs {
		t.Stop()
		delete(s.jobs, key)
	}
}
