package delivery

import (
	"context"
	"errors"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"go.uber.org/zap"

	"github.com/Vovarama1992/vaya_caller/internal/ports"
)

func testLogger() *logger.ZapLogger {
	return logger.NewZapLogger(zap.NewNop().Sugar())
}

type fakeStore struct {
	contacts []ports.Contact
	failAdd  bool
}

func (f *fakeStore) Add(ctx context.Context, name, phone string, at time.Time) bool {
	if f.failAdd {
		return false
	}
	f.contacts = append(f.contacts, ports.Contact{
		Name: name, Phone: phone, ScheduledTime: at,
		Status: ports.StatusScheduled, CreatedAt: time.Now(),
	})
	return true
}

func (f *fakeStore) UpdateStatus(ctx context.Context, phone string, status ports.ContactStatus) bool {
	matched := false
	for i := range f.contacts {
		if f.contacts[i].Phone == phone {
			f.contacts[i].Status = status
			matched = true
		}
	}
	return matched
}

func (f *fakeStore) TransitionStatus(ctx context.Context, phone string, from, to ports.ContactStatus) bool {
	for i := range f.contacts {
		if f.contacts[i].Phone == phone && f.contacts[i].Status == from {
			f.contacts[i].Status = to
			return true
		}
	}
	return false
}

func (f *fakeStore) GetAll(ctx context.Context) ([]ports.Contact, error) {
	return append([]ports.Contact(nil), f.contacts...), nil
}

func (f *fakeStore) GetPending(ctx context.Context, now time.Time) ([]ports.Contact, error) {
	var pending []ports.Contact
	for _, c := range f.contacts {
		if c.Status == ports.StatusScheduled && !c.ScheduledTime.After(now) {
			pending = append(pending, c)
		}
	}
	return pending, nil
}

func (f *fakeStore) Delete(ctx context.Context, phone string) bool {
	kept := f.contacts[:0]
	for _, c := range f.contacts {
		if c.Phone != phone {
			kept = append(kept, c)
		}
	}
	f.contacts = kept
	return true
}

type fakeRecorder struct {
	records []ports.ResponseRecord
}

func (f *fakeRecorder) Record(ctx context.Context, rec ports.ResponseRecord) error {
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeRecorder) All(ctx context.Context) ([][]string, error) {
	var rows [][]string
	for _, r := range f.records {
		rows = append(rows, []string{r.QuestionText, r.AnswerText})
	}
	return rows, nil
}

type fakeScheduler struct {
	scheduled []string
	cancelled []string
	hasJob    bool
}

func (f *fakeScheduler) Schedule(name, phone string, fireTime time.Time) bool {
	if !fireTime.After(time.Now()) {
		return false
	}
	f.scheduled = append(f.scheduled, phone)
	return true
}

func (f *fakeScheduler) Cancel(ctx context.Context, phone string) bool {
	if !f.hasJob {
		return false
	}
	f.hasJob = false
	f.cancelled = append(f.cancelled, phone)
	return true
}

func (f *fakeScheduler) Jobs() int {
	if f.hasJob {
		return 1
	}
	return 0
}

type fakeDialer struct {
	calls []string
	err   error
}

func (f *fakeDialer) Dial(ctx context.Context, name, phone string) (string, error) {
	return f.DialDirect(ctx, name, phone)
}

func (f *fakeDialer) DialDirect(ctx context.Context, name, phone string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.calls = append(f.calls, phone)
	return "CA123", nil
}

var errProviderDown = errors.New("provider down")

func timeNowPlusHour() time.Time {
	return time.Now().Add(time.Hour)
}
