package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/vaya_caller/internal/notify"
	"github.com/Vovarama1992/vaya_caller/internal/ports"
)

// Runner — страховочный цикл поверх таймеров: раз в интервал вычитывает
// просроченные Scheduled-контакты и прозванивает их напрямую. Так звонок
// не теряется, даже если таймер пропал (рестарт процесса).
type Runner struct {
	store    ports.ContactStore
	dialer   ports.Dialer
	sched    *Service
	notifier notify.Notifier
	interval time.Duration
	log      *logger.ZapLogger

	running atomic.Bool
	stop    chan struct{}
	done    chan struct{}
}

func NewRunner(
	store ports.ContactStore,
	dialer ports.Dialer,
	sched *Service,
	notifier notify.Notifier,
	interval time.Duration,
	log *logger.ZapLogger,
) *Runner {
	return &Runner{
		store:    store,
		dialer:   dialer,
		sched:    sched,
		notifier: notifier,
		interval: interval,
		log:      log,
	}
}

func (r *Runner) Start() {
	if !r.running.CompareAndSwap(false, true) {
		return
	}
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	go r.loop()
	r.log.Log(logger.LogEntry{Level: "info", Message: "poller: started"})
}

// Stop — кооперативная остановка: ждём выхода из цикла, потом гасим
// таймеры шедулера.
func (r *Runner) Stop() {
	if !r.running.CompareAndSwap(true, false) {
		return
	}
	close(r.stop)
	<-r.done
	r.sched.Shutdown()
	r.log.Log(logger.LogEntry{Level: "info", Message: "poller: stopped"})
}

func (r *Runner) Running() bool {
	return r.running.Load()
}

func (r *Runner) loop() {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

// sweep обрабатывает один проход. Паника или ошибка внутри прохода
// не должна убить цикл — логируем и спим дальше.
func (r *Runner) sweep() {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Log(logger.LogEntry{
				Level:   "error",
				Message: fmt.Sprintf("poller: sweep panic: %v", rec),
			})
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.interval)
	defer cancel()

	pending, err := r.store.GetPending(ctx, time.Now())
	if err != nil {
		r.log.Log(logger.LogEntry{Level: "error", Message: "poller: read pending failed", Error: err})
		_ = r.notifier.Notify(ctx, err, "poller: read pending failed")
		return
	}

	for _, c := range pending {
		r.log.Log(logger.LogEntry{
			Level:   "info",
			Message: fmt.Sprintf("poller: overdue call for %s (%s)", c.Name, c.Phone),
		})
		// ошибка одного контакта не прерывает остальных
		if _, err := r.dialer.Dial(ctx, c.Name, c.Phone); err != nil {
			r.log.Log(logger.LogEntry{
				Level:   "error",
				Message: "poller: call failed for " + c.Phone,
				Error:   err,
			})
		}
	}
}
