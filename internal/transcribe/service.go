package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/google/uuid"

	"github.com/Vovarama1992/vaya_caller/internal/ports"
	"github.com/Vovarama1992/vaya_caller/internal/telephony"
)

// Service расшифровывает запись завершённого звонка целиком: скачали mp3,
// заархивировали в S3 (если настроен), прогнали через Whisper, положили
// транскрипт в лог ответов. Всё best-effort, статусы контактов не трогаем.
type Service struct {
	phone    telephony.Client
	stt      STTClient
	storage  ports.ObjectStorage // nil, если S3 не настроен
	recorder ports.ResponseRecorder
	log      *logger.ZapLogger
}

func NewService(phone telephony.Client, stt STTClient, storage ports.ObjectStorage, recorder ports.ResponseRecorder, log *logger.ZapLogger) *Service {
	return &Service{
		phone:    phone,
		stt:      stt,
		storage:  storage,
		recorder: recorder,
		log:      log,
	}
}

func (s *Service) TranscribeCall(ctx context.Context, callSID string) (string, error) {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("recording_%s.mp3", uuid.NewString()))
	defer os.Remove(path)

	if err := s.phone.FetchRecording(ctx, callSID, path); err != nil {
		return "", fmt.Errorf("fetch recording: %w", err)
	}

	s.archive(ctx, callSID, path)

	text, err := s.stt.Transcribe(ctx, path)
	if err != nil {
		return "", err
	}

	if err := s.recorder.Record(ctx, ports.ResponseRecord{
		QuestionNumber: 0,
		QuestionText:   "full_recording",
		AnswerText:     text,
		RespondentName: callSID,
		RecordedAt:     time.Now(),
	}); err != nil {
		s.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "transcribe: failed to save transcript for " + callSID,
			Error:   err,
		})
	}

	return text, nil
}

func (s *Service) archive(ctx context.Context, callSID, path string) {
	if s.storage == nil {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		s.log.Log(logger.LogEntry{Level: "warn", Message: "transcribe: open recording failed", Error: err})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.log.Log(logger.LogEntry{Level: "warn", Message: "transcribe: stat recording failed", Error: err})
		return
	}

	key := fmt.Sprintf("recordings/%s.mp3", callSID)
	url, err := s.storage.PutObject(ctx, key, f, info.Size(), "audio/mpeg")
	if err != nil {
		s.log.Log(logger.LogEntry{Level: "warn", Message: "transcribe: archive failed for " + callSID, Error: err})
		return
	}

	s.log.Log(logger.LogEntry{Level: "info", Message: "transcribe: recording archived at " + url})
}
