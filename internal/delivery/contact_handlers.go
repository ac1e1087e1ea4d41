package delivery

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"

	"github.com/Vovarama1992/vaya_caller/internal/ports"
)

// datetime-local из формы, без зоны: интерпретируем в зоне сервиса
const submitTimeLayout = "2006-01-02T15:04"

type ContactHandler struct {
	store  ports.ContactStore
	sched  ports.Scheduler
	dialer ports.Dialer
	loc    *time.Location
	log    *logger.ZapLogger
}

func NewContactHandler(store ports.ContactStore, sched ports.Scheduler, dialer ports.Dialer, loc *time.Location, log *logger.ZapLogger) *ContactHandler {
	return &ContactHandler{
		store:  store,
		sched:  sched,
		dialer: dialer,
		loc:    loc,
		log:    log,
	}
}

type contactView struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	ScheduledTime string `json:"scheduled_time"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

func toViews(contacts []ports.Contact) []contactView {
	views := make([]contactView, 0, len(contacts))
	for _, c := range contacts {
		views = append(views, contactView{
			Name:          c.Name,
			Phone:         c.Phone,
			ScheduledTime: c.ScheduledTime.Format("2006-01-02 15:04:05"),
			Status:        string(c.Status),
			CreatedAt:     c.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return views
}

// Create — постановка звонка: строка в таблице + таймер.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	name := r.FormValue("name")
	phone := r.FormValue("phone")
	timeStr := r.FormValue("scheduled_time")
	if name == "" || phone == "" || timeStr == "" {
		http.Error(w, "missing name, phone or scheduled_time", http.StatusBadRequest)
		return
	}

	scheduledTime, err := time.ParseInLocation(submitTimeLayout, timeStr, h.loc)
	if err != nil {
		http.Error(w, "invalid scheduled_time: "+err.Error(), http.StatusBadRequest)
		return
	}

	if !h.store.Add(r.Context(), name, phone, scheduledTime) {
		http.Error(w, "failed to save contact", http.StatusInternalServerError)
		return
	}

	// время в прошлом — таймера не будет, контакт заберёт поллер
	if !h.sched.Schedule(name, phone, scheduledTime) {
		h.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "contacts: no timer registered for " + phone,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "scheduled", "phone": phone})
}

// CallNow — немедленный звонок без расписания.
func (h *ContactHandler) CallNow(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	phone := r.FormValue("phone")
	if phone == "" {
		http.Error(w, "missing phone", http.StatusBadRequest)
		return
	}

	sid, err := h.dialer.DialDirect(r.Context(), r.FormValue("name"), phone)
	if err != nil {
		http.Error(w, "failed to start call: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"call_sid": sid})
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.store.GetAll(r.Context())
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "contacts: list failed", Error: err})
		http.Error(w, "failed to read contacts: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toViews(contacts))
}

func (h *ContactHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.store.GetPending(r.Context(), time.Now())
	if err != nil {
		http.Error(w, "failed to read contacts: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toViews(pending))
}

// Cancel снимает джобу и помечает контакт Cancelled. Повторный вызов — 404.
func (h *ContactHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")

	if !h.sched.Cancel(r.Context(), phone) {
		http.Error(w, "no scheduled job for "+phone, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"cancelled": phone})
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")

	// висящий таймер больше не нужен; отсутствие джобы — не ошибка
	h.sched.Cancel(r.Context(), phone)

	if !h.store.Delete(r.Context(), phone) {
		http.Error(w, "failed to delete contact", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"deleted": phone})
}
