package delivery

import (
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

func RegisterRoutes(
	r chi.Router,
	hVoice *VoiceHandler,
	hContacts *ContactHandler,
	hExport *ExportHandler,
	hStatus *StatusHandler,
	hRecording *RecordingHandler,
) {
	// --- голосовой webhook (дергает провайдер, без лимитов) ---
	r.With(httputil.RecoverMiddleware).Get("/voice", hVoice.Handle)
	r.With(httputil.RecoverMiddleware).Post("/voice", hVoice.Handle)

	// --- админка ---
	r.Route("/", func(pr chi.Router) {
		pr.Use(
			httputil.RecoverMiddleware,
			httprate.LimitByIP(60, time.Minute),
		)

		// --- звонки и контакты ---
		pr.Post("/calls", hContacts.CallNow)
		pr.Post("/contacts", hContacts.Create)
		pr.Get("/contacts", hContacts.List)
		pr.Get("/contacts/pending", hContacts.ListPending)
		pr.Get("/contacts/export", hExport.DownloadContacts)
		pr.Post("/contacts/{phone}/cancel", hContacts.Cancel)
		pr.Delete("/contacts/{phone}", hContacts.Delete)

		// --- ответы ---
		pr.Get("/responses", hExport.ListResponses)
		pr.Get("/responses/download", hExport.DownloadResponses)

		// --- записи звонков ---
		pr.Post("/recordings/transcribe", hRecording.Transcribe)

		// --- здоровье ---
		pr.Get("/status", hStatus.Status)
	})
}
