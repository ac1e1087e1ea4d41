package delivery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct{ running bool }

func (f *fakeRunner) Running() bool { return f.running }

func TestStatus(t *testing.T) {
	store := &fakeStore{}
	store.Add(context.Background(), "Due", "+15550000001", time.Now().Add(-time.Minute))
	store.Add(context.Background(), "Future", "+15550000002", time.Now().Add(time.Hour))

	h := NewStatusHandler(store, &fakeScheduler{hasJob: true}, &fakeRunner{running: true})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	h.Status(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Running       bool `json:"running"`
		ScheduledJobs int  `json:"scheduled_jobs"`
		PendingCalls  int  `json:"pending_calls"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Running)
	assert.Equal(t, 1, resp.ScheduledJobs)
	assert.Equal(t, 1, resp.PendingCalls)
}
