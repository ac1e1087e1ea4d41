package delivery

import (
	"encoding/json"
	"net/http"

	"github.com/Vovarama1992/vaya_caller/internal/transcribe"
)

type RecordingHandler struct {
	transcriber *transcribe.Service // nil, если OPENAI_API_KEY не задан
}

func NewRecordingHandler(transcriber *transcribe.Service) *RecordingHandler {
	return &RecordingHandler{transcriber: transcriber}
}

func (h *RecordingHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if h.transcriber == nil {
		http.Error(w, "transcription is not configured", http.StatusServiceUnavailable)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	callSID := r.FormValue("call_sid")
	if callSID == "" {
		http.Error(w, "missing call_sid", http.StatusBadRequest)
		return
	}

	text, err := h.transcriber.TranscribeCall(r.Context(), callSID)
	if err != nil {
		http.Error(w, "failed to transcribe: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"call_sid": callSID, "transcript": text})
}
