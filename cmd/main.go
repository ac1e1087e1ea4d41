package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/vaya_caller/internal/delivery"
	"github.com/Vovarama1992/vaya_caller/internal/infra"
	"github.com/Vovarama1992/vaya_caller/internal/interview"
	"github.com/Vovarama1992/vaya_caller/internal/notify"
	"github.com/Vovarama1992/vaya_caller/internal/ports"
	"github.com/Vovarama1992/vaya_caller/internal/scheduler"
	"github.com/Vovarama1992/vaya_caller/internal/telephony"
	"github.com/Vovarama1992/vaya_caller/internal/transcribe"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {

	// =========================================================================
	// ENV / LOGGER
	// =========================================================================

	_ = godotenv.Load()

	port := getenv("PORT", "8080")

	baseURL := os.Getenv("PUBLIC_BASE_URL")
	if baseURL == "" {
		log.Fatal("PUBLIC_BASE_URL is not set")
	}

	// одна гражданская зона на весь сервис: парсинг, сравнение, вывод
	loc := time.UTC
	if tz := os.Getenv("APP_TIMEZONE"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			log.Fatalf("invalid APP_TIMEZONE: %v", err)
		}
		loc = l
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	// =========================================================================
	// INFRASTRUCTURE
	// =========================================================================

	contactsFile := getenv("CONTACTS_FILE", "contacts.xlsx")
	responsesFile := getenv("RESPONSES_FILE", "responses.csv")

	store, err := infra.NewContactStore(contactsFile, loc)
	if err != nil {
		log.Fatalf("failed to init contact store: %v", err)
	}

	responses := infra.NewResponseLog(responsesFile)

	questions, err := interview.LoadQuestions(getenv("QUESTIONS_FILE", "questions.json"))
	if err != nil {
		log.Fatalf("failed to load questions: %v", err)
	}

	var storage ports.ObjectStorage
	if os.Getenv("S3_ENDPOINT") != "" {
		s3, err := infra.NewS3Client()
		if err != nil {
			log.Fatalf("failed to init s3: %v", err)
		}
		storage = s3
	}

	notifier := notify.NewFromEnv()
	phoneClient := telephony.NewTwilioClient()

	// =========================================================================
	// SERVICES
	// =========================================================================

	dialer := telephony.NewDialer(phoneClient, store, notifier, baseURL, zl)
	interviewSvc := interview.NewService(questions, responses, store, zl)

	sched := scheduler.NewService(store, dialer, zl)
	sched.RestoreFromStore(context.Background())

	pollInterval := 30 * time.Second
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			log.Fatalf("invalid POLL_INTERVAL: %q", v)
		}
		pollInterval = time.Duration(secs) * time.Second
	}

	runner := scheduler.NewRunner(store, dialer, sched, notifier, pollInterval, zl)
	runner.Start()

	var transcriber *transcribe.Service
	if os.Getenv("OPENAI_API_KEY") != "" {
		transcriber = transcribe.NewService(phoneClient, transcribe.NewOpenAIClient(), storage, responses, zl)
	}

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	gatherTimeout, _ := strconv.Atoi(getenv("SPEECH_TIMEOUT", "5"))

	voiceHandler := delivery.NewVoiceHandler(interviewSvc, gatherTimeout, zl)
	contactHandler := delivery.NewContactHandler(store, sched, dialer, loc, zl)
	exportHandler := delivery.NewExportHandler(responses, responsesFile, contactsFile)
	statusHandler := delivery.NewStatusHandler(store, sched, runner)
	recordingHandler := delivery.NewRecordingHandler(transcriber)

	delivery.RegisterRoutes(
		r,
		voiceHandler,
		contactHandler,
		exportHandler,
		statusHandler,
		recordingHandler,
	)

	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("pong"))
	})

	// =========================================================================
	// START / SHUTDOWN
	// =========================================================================

	srv := &http.Server{Addr: ":" + port, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at :" + port,
		Service: "vaya_caller",
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// поллер останавливается первым и сам гасит таймеры шедулера
	runner.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
