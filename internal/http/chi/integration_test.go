package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelsud/attendance-relay/attendance"
	"github.com/marcelsud/attendance-relay/attendance/memory"
	"github.com/marcelsud/attendance-relay/routes"
)

// TestAttendanceFlow drives a submission through the router, the in-memory store
// and the forwarder against a fake downstream webhook, then polls for the outcome.
func TestAttendanceFlow(t *testing.T) {
	var mu sync.Mutex
	var received []map[string]any
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		received = append(received, body)
		mu.Unlock()

		if strings.HasSuffix(r.URL.Path, "/logout") {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"recorded":true}`))
	}))
	defer downstream.Close()

	loader, err := routes.FromURLs(downstream.URL+"/login", downstream.URL+"/logout", "")
	require.NoError(t, err)

	repo := memory.NewRepository()
	forwarder, err := attendance.NewForwarder(attendance.ForwarderOptions{
		Repo:      repo,
		Endpoints: loader,
		Client:    downstream.Client(),
		Timeout:   5 * time.Second,
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)
	svc := attendance.NewService(repo, forwarder, zerolog.Nop())
	h := Handlers(context.Background(), svc, Options{Logger: zerolog.Nop(), RecentLimit: 10})

	submit := func(path string) string {
		w := doRequest(t, h, http.MethodPost, path, validBody)
		require.Equal(t, http.StatusOK, w.Code)
		var result submitResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		require.NotEmpty(t, result.JobID)
		return result.JobID
	}
	waitFor := func(jobID, status string) map[string]any {
		var result map[string]any
		require.Eventually(t, func() bool {
			w := doRequest(t, h, http.MethodGet, "/status/"+jobID, "")
			if w.Code != http.StatusOK {
				return false
			}
			result = decodeMap(t, w)
			return result["status"] == status
		}, 5*time.Second, 10*time.Millisecond)
		return result
	}

	t.Run("success - login delivered", func(t *testing.T) {
		jobID := submit("/login")

		result := waitFor(jobID, "success")
		assert.Equal(t, map[string]any{"recorded": true}, result["downstreamResponse"])
		assert.Equal(t, "Maria Silva", result["name"])
	})

	t.Run("error - logout rejected downstream", func(t *testing.T) {
		jobID := submit("/logout")

		result := waitFor(jobID, "failed")
		assert.Equal(t, "webhook responded with status 502", result["error"])
	})

	t.Run("recent activities only list deliveries", func(t *testing.T) {
		require.NoError(t, svc.Wait(context.Background()))

		w := doRequest(t, h, http.MethodGet, "/recent-activities", "")
		var results []activityResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
		require.Len(t, results, 1)
		assert.Equal(t, "login", results[0].Action)
	})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 2)
	assert.Equal(t, "login", received[0]["action"])
	assert.Equal(t, "Engineering", received[0]["department"])
	assert.NotEmpty(t, received[0]["jobId"])
	assert.NotEmpty(t, received[0]["timestamp"])
	assert.Equal(t, "logout", received[1]["action"])
}
