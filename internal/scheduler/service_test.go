package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vovarama1992/vaya_caller/internal/ports"
)

type fakeStore struct {
	mu       sync.Mutex
	contacts []ports.Contact
}

func (f *fakeStore) add(name, phone string, at time.Time, status ports.ContactStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contacts = append(f.contacts, ports.Contact{
		Name: name, Phone: phone, ScheduledTime: at, Status: status, CreatedAt: time.Now(),
	})
}

func (f *fakeStore) status(phone string) ports.ContactStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.contacts {
		if c.Phone == phone {
			return c.Status
		}
	}
	return ""
}

func (f *fakeStore) Add(ctx context.Context, name, phone string, at time.Time) bool {
	f.add(name, phone, at, ports.StatusScheduled)
	return true
}

func (f *fakeStore) UpdateStatus(ctx context.Context, phone string, status ports.ContactStatus) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
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
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.contacts {
		if f.contacts[i].Phone == phone && f.contacts[i].Status == from {
			f.contacts[i].Status = to
			return true
		}
	}
	return false
}

func (f *fakeStore) GetAll(ctx context.Context) ([]ports.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ports.Contact, len(f.contacts))
	copy(out, f.contacts)
	return out, nil
}

func (f *fakeStore) GetPending(ctx context.Context, now time.Time) ([]ports.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pending []ports.Contact
	for _, c := range f.contacts {
		if c.Status == ports.StatusScheduled && !c.ScheduledTime.After(now) {
			pending = append(pending, c)
		}
	}
	return pending, nil
}

func (f *fakeStore) Delete(ctx context.Context, phone string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.contacts[:0]
	for _, c := range f.contacts {
		if c.Phone != phone {
			kept = append(kept, c)
		}
	}
	f.contacts = kept
	return true
}

// fakeDialer повторяет контракт боевого: CAS в сторе, при ошибке — Failed.
type fakeDialer struct {
	mu    sync.Mutex
	store *fakeStore
	calls []string
	fail  map[string]error
	panic bool
}

func newFakeDialer(store *fakeStore) *fakeDialer {
	return &fakeDialer{store: store, fail: make(map[string]error)}
}

func (f *fakeDialer) setPanic(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.panic = v
}

func (f *fakeDialer) Dial(ctx context.Context, name, phone string) (string, error) {
	f.mu.Lock()
	shouldPanic := f.panic
	f.mu.Unlock()
	if shouldPanic {
		panic("dialer blew up")
	}
	if !f.store.TransitionStatus(ctx, phone, ports.StatusScheduled, ports.StatusInProgress) {
		return "", nil
	}
	if err, ok := f.fail[phone]; ok {
		f.store.UpdateStatus(ctx, phone, ports.StatusFailed)
		return "", err
	}
	f.mu.Lock()
	f.calls = append(f.calls, phone)
	f.mu.Unlock()
	return "CA" + phone, nil
}

func (f *fakeDialer) DialDirect(ctx context.Context, name, phone string) (string, error) {
	return f.Dial(ctx, name, phone)
}

func (f *fakeDialer) dialed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func testLogger() *logger.ZapLogger {
	return logger.NewZapLogger(zap.NewNop().Sugar())
}

func TestScheduleRefusesPastTime(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, newFakeDialer(store), testLogger())
	defer svc.Shutdown()

	assert.False(t, svc.Schedule("Asha", "+15551234567", time.Now().Add(-time.Minute)))
	assert.Equal(t, 0, svc.Jobs())
}

func TestScheduleReplacesSameKey(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, newFakeDialer(store), testLogger())
	defer svc.Shutdown()

	fireAt := time.Now().Add(time.Hour).Truncate(time.Second)
	assert.True(t, svc.Schedule("Asha", "+15551234567", fireAt))
	assert.True(t, svc.Schedule("Asha", "+15551234567", fireAt))

	assert.Equal(t, 1, svc.Jobs(), "same (phone, time) must not duplicate")
}

func TestScheduledJobFires(t *testing.T) {
	store := &fakeStore{}
	dialer := newFakeDialer(store)
	svc := NewService(store, dialer, testLogger())
	defer svc.Shutdown()

	store.add("Asha", "+15551234567", time.Now(), ports.StatusScheduled)
	require.True(t, svc.Schedule("Asha", "+15551234567", time.Now().Add(30*time.Millisecond)))

	require.Eventually(t, func() bool {
		return len(dialer.dialed()) == 1
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, ports.StatusInProgress, store.status("+15551234567"))
	assert.Equal(t, 0, svc.Jobs())
}

func TestFiredJobFailureMarksFailed(t *testing.T) {
	store := &fakeStore{}
	dialer := newFakeDialer(store)
	dialer.fail["+15551234567"] = errors.New("provider down")
	svc := NewService(store, dialer, testLogger())
	defer svc.Shutdown()

	store.add("Asha", "+15551234567", time.Now(), ports.StatusScheduled)
	require.True(t, svc.Schedule("Asha", "+15551234567", time.Now().Add(30*time.Millisecond)))

	require.Eventually(t, func() bool {
		return store.status("+15551234567") == ports.StatusFailed
	}, time.Second, 10*time.Millisecond)
}

func TestCancel(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, newFakeDialer(store), testLogger())
	defer svc.Shutdown()

	ctx := context.Background()
	store.add("Asha", "+15551234567", time.Now().Add(time.Hour), ports.StatusScheduled)
	require.True(t, svc.Schedule("Asha", "+15551234567", time.Now().Add(time.Hour)))

	assert.True(t, svc.Cancel(ctx, "+15551234567"))
	assert.Equal(t, ports.StatusCancelled, store.status("+15551234567"))
	assert.Equal(t, 0, svc.Jobs())

	// повторная отмена — отказ, статус не трогаем
	assert.False(t, svc.Cancel(ctx, "+15551234567"))
	assert.Equal(t, ports.StatusCancelled, store.status("+15551234567"))
}

func TestRestoreFromStoreSkipsPastDue(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, newFakeDialer(store), testLogger())
	defer svc.Shutdown()

	store.add("Future", "+15550000001", time.Now().Add(time.Hour), ports.StatusScheduled)
	store.add("PastDue", "+15550000002", time.Now().Add(-time.Hour), ports.StatusScheduled)
	store.add("Done", "+15550000003", time.Now().Add(time.Hour), ports.StatusCompleted)

	svc.RestoreFromStore(context.Background())

	// просроченный контакт — зона ответственности поллера
	assert.Equal(t, 1, svc.Jobs())
	assert.Equal(t, ports.StatusScheduled, store.status("+15550000002"))
}

func TestShutdownStopsTimersKeepsStatuses(t *testing.T) {
	store := &fakeStore{}
	dialer := newFakeDialer(store)
	svc := NewService(store, dialer, testLogger())

	store.add("Asha", "+15551234567", time.Now().Add(time.Hour), ports.StatusScheduled)
	require.True(t, svc.Schedule("Asha", "+15551234567", time.Now().Add(time.Hour)))

	svc.Shutdown()

	assert.Equal(t, 0, svc.Jobs())
	assert.Equal(t, ports.StatusScheduled, store.status("+15551234567"))
	assert.Empty(t, dialer.dialed())
}
