package delivery

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/twilio/twilio-go/twiml"

	"github.com/Vovarama1992/vaya_caller/internal/interview"
)

// Запасной документ на случай, если даже рендер TwiML упал.
// Голосовая граница никогда не отвечает HTTP-ошибкой.
const fallbackTwiML = `<?xml version="1.0" encoding="UTF-8"?>` +
	`<Response><Say>We're sorry, something went wrong on our end. Goodbye.</Say><Hangup/></Response>`

type VoiceHandler struct {
	interview     *interview.Service
	gatherTimeout int // секунд на ответ, потом re-prompt того же вопроса
	log           *logger.ZapLogger
}

func NewVoiceHandler(svc *interview.Service, gatherTimeout int, log *logger.ZapLogger) *VoiceHandler {
	if gatherTimeout <= 0 {
		gatherTimeout = 5
	}
	return &VoiceHandler{
		interview:     svc,
		gatherTimeout: gatherTimeout,
		log:           log,
	}
}

// Handle — единственный голосовой роут: и "start call" (q=0), и
// "capture answer" (q>=1). Состояние сессии целиком в query-параметрах.
func (h *VoiceHandler) Handle(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	index := 0
	if qStr := r.URL.Query().Get("q"); qStr != "" {
		n, err := strconv.Atoi(qStr)
		if err != nil {
			h.log.Log(logger.LogEntry{Level: "warn", Message: "voice: malformed question index: " + qStr})
			index = -1 // сервис ответит извинением
		} else {
			index = n
		}
	}

	_ = r.ParseForm()

	step := h.interview.Step(r.Context(), interview.StepInput{
		Index:      index,
		Speech:     strings.TrimSpace(r.FormValue("SpeechResult")),
		Confidence: r.FormValue("Confidence"),
		Phone:      r.FormValue("To"),
		Name:       name,
	})

	h.writeTwiML(w, h.render(step, name))
}

func (h *VoiceHandler) render(st interview.Step, name string) string {
	var verbs []twiml.Element

	switch st.Kind {
	case interview.StepGreeting, interview.StepAsk:
		if st.Say != "" {
			verbs = append(verbs, &twiml.VoiceSay{Message: st.Say})
		}
		verbs = append(verbs,
			&twiml.VoiceGather{
				Input:         "speech",
				Action:        h.actionURL(st.ActionIndex, name),
				Method:        "POST",
				Timeout:       strconv.Itoa(h.gatherTimeout),
				FinishOnKey:   "#",
				InnerElements: []twiml.Element{&twiml.VoiceSay{Message: st.Prompt}},
			},
			// таймаут gather — повторяем тот же вопрос, не идём дальше
			&twiml.VoiceRedirect{
				Url:    h.actionURL(st.RepromptIndex, name),
				Method: "POST",
			},
		)
	default: // StepDone, StepApology
		verbs = append(verbs, &twiml.VoiceSay{Message: st.Say}, &twiml.VoiceHangup{})
	}

	doc, err := twiml.Voice(verbs)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "voice: twiml render failed", Error: err})
		return fallbackTwiML
	}
	return doc
}

func (h *VoiceHandler) actionURL(index int, name string) string {
	u := "/voice?q=" + strconv.Itoa(index)
	if name != "" {
		u += "&name=" + url.QueryEscape(name)
	}
	return u
}

func (h *VoiceHandler) writeTwiML(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}
