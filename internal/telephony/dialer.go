package telephony

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/vaya_caller/internal/notify"
	"github.com/Vovarama1992/vaya_caller/internal/ports"
)

// Dialer — единая точка постановки звонка для шедулера, поллера и ручного
// запуска. Статусы контакта двигает только он.
type Dialer struct {
	client   Client
	store    ports.ContactStore
	notifier notify.Notifier
	baseURL  string
	log      *logger.ZapLogger
}

func NewDialer(client Client, store ports.ContactStore, notifier notify.Notifier, baseURL string, log *logger.ZapLogger) *Dialer {
	return &Dialer{
		client:   client,
		store:    store,
		notifier: notifier,
		baseURL:  baseURL,
		log:      log,
	}
}

// Dial — запланированный звонок. CAS Scheduled -> In Progress закрывает
// гонку между таймером и поллером: кто проиграл — молча выходит.
func (d *Dialer) Dial(ctx context.Context, name, phone string) (string, error) {
	if !d.store.TransitionStatus(ctx, phone, ports.StatusScheduled, ports.StatusInProgress) {
		d.log.Log(logger.LogEntry{
			Level:   "info",
			Message: "dialer: contact already taken, skipping " + phone,
		})
		return "", nil
	}

	sid, err := d.place(ctx, name, phone)
	if err != nil {
		d.store.UpdateStatus(ctx, phone, ports.StatusFailed)
		_ = d.notifier.Notify(ctx, err, "call placement failed for "+phone)
		return "", err
	}

	// Completed поставит голосовой webhook, когда дойдёт до конца вопросов.
	return sid, nil
}

// DialDirect — немедленный звонок без строки в таблице контактов.
func (d *Dialer) DialDirect(ctx context.Context, name, phone string) (string, error) {
	return d.place(ctx, name, phone)
}

func (d *Dialer) place(ctx context.Context, name, phone string) (string, error) {
	callbackURL := fmt.Sprintf("%s/voice?q=0&name=%s", d.baseURL, url.QueryEscape(name))

	sid, err := d.client.PlaceCall(ctx, phone, callbackURL)
	if err != nil {
		return "", err
	}

	d.log.Log(logger.LogEntry{
		Level:   "info",
		Message: fmt.Sprintf("dialer: call started for %s (%s), sid=%s", name, phone, sid),
	})
	return sid, nil
}
