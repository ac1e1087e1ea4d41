package delivery

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Vovarama1992/vaya_caller/internal/ports"
)

type pollRunner interface {
	Running() bool
}

// Здоровье шедулера и поллера. Только отчёт, ничего не мутирует.
type StatusHandler struct {
	store  ports.ContactStore
	sched  ports.Scheduler
	runner pollRunner
}

func NewStatusHandler(store ports.ContactStore, sched ports.Scheduler, runner pollRunner) *StatusHandler {
	return &StatusHandler{
		store:  store,
		sched:  sched,
		runner: runner,
	}
}

func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	pending, err := h.store.GetPending(r.Context(), time.Now())
	if err != nil {
		http.Error(w, "failed to read contacts: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"running":        h.runner.Running(),
		"scheduled_jobs": h.sched.Jobs(),
		"pending_calls":  len(pending),
	})
}
