package delivery

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Vovarama1992/vaya_caller/internal/ports"
)

// Экспорт — только чтение: лог ответов и таблица контактов как файлы.
type ExportHandler struct {
	recorder      ports.ResponseRecorder
	responsesFile string
	contactsFile  string
}

func NewExportHandler(recorder ports.ResponseRecorder, responsesFile, contactsFile string) *ExportHandler {
	return &ExportHandler{
		recorder:      recorder,
		responsesFile: responsesFile,
		contactsFile:  contactsFile,
	}
}

func (h *ExportHandler) ListResponses(w http.ResponseWriter, r *http.Request) {
	rows, err := h.recorder.All(r.Context())
	if err != nil {
		http.Error(w, "failed to read responses: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = [][]string{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}

func (h *ExportHandler) DownloadResponses(w http.ResponseWriter, r *http.Request) {
	h.sendFile(w, r, h.responsesFile, "text/csv")
}

func (h *ExportHandler) DownloadContacts(w http.ResponseWriter, r *http.Request) {
	h.sendFile(w, r, h.contactsFile,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

func (h *ExportHandler) sendFile(w http.ResponseWriter, r *http.Request, path, contentType string) {
	if _, err := os.Stat(path); err != nil {
		http.Error(w, "nothing to export yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(path)+`"`)
	http.ServeFile(w, r, path)
}
