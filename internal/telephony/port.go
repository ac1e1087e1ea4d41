package telephony

import "context"

// Client — провайдер телефонии: сам звонок и доступ к его записи.
type Client interface {
	// PlaceCall ставит исходящий звонок и возвращает его идентификатор.
	// Провайдер дальше сам дергает callbackURL по ходу разговора.
	PlaceCall(ctx context.Context, to, callbackURL string) (string, error)

	// FetchRecording скачивает запись завершённого звонка в outPath.
	FetchRecording(ctx context.Context, callSID, outPath string) error
}
