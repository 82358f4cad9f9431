package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/marcelsud/attendance-relay/attendance"
	"github.com/marcelsud/attendance-relay/attendance/mocks"
)

func newTestRouter(t *testing.T, s attendance.UseCase, dev bool) http.Handler {
	t.Helper()
	return Handlers(context.Background(), s, Options{
		Logger:      zerolog.Nop(),
		Dev:         dev,
		RecentLimit: attendance.MaxRecentActivities,
	})
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, path, nil)
	} else {
		req, err = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	require.NoError(t, err)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

const validBody = `{"name":"Maria Silva","department":"Engineering","date":"2024-01-01","time":"09:00","action":"login"}`

func TestPostAttendance(t *testing.T) {
	t.Run("success - accepted", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("Submit", mock.Anything, attendance.Event{
			Name:       "Maria Silva",
			Department: "Engineering",
			Date:       "2024-01-01",
			Time:       "09:00",
			Action:     "login",
		}).Return(attendance.Receipt{JobID: "job-1", Action: attendance.Login}, nil)

		w := doRequest(t, newTestRouter(t, s, false), http.MethodPost, "/attendance", validBody)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		var result submitResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.True(t, result.Success)
		assert.Equal(t, "job-1", result.JobID)
		assert.Equal(t, "login", result.Action)
		assert.NotEmpty(t, result.Message)
	})

	t.Run("success - logout route overrides body action", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("Submit", mock.Anything, mock.MatchedBy(func(e attendance.Event) bool {
			return e.Action == "logout"
		})).Return(attendance.Receipt{JobID: "job-2", Action: attendance.Logout}, nil)

		w := doRequest(t, newTestRouter(t, s, false), http.MethodPost, "/logout", validBody)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "logout", decodeMap(t, w)["action"])
	})

	t.Run("success - login route injects action", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("Submit", mock.Anything, mock.MatchedBy(func(e attendance.Event) bool {
			return e.Action == "login"
		})).Return(attendance.Receipt{JobID: "job-3", Action: attendance.Login}, nil)

		body := `{"name":"Maria","department":"Ops","date":"2024-01-01","time":"09:00"}`
		w := doRequest(t, newTestRouter(t, s, false), http.MethodPost, "/login", body)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("error - validation", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("Submit", mock.Anything, mock.Anything).
			Return(attendance.Receipt{}, &attendance.ValidationError{Message: "Missing required fields: department"})

		w := doRequest(t, newTestRouter(t, s, false), http.MethodPost, "/attendance", `{"name":"Maria"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Missing required fields: department", decodeMap(t, w)["error"])
	})

	t.Run("error - malformed JSON", func(t *testing.T) {
		s := mocks.NewUseCase(t)

		w := doRequest(t, newTestRouter(t, s, false), http.MethodPost, "/attendance", `{"name":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeMap(t, w), "error")
	})

	t.Run("error - internal error hidden in production", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("Submit", mock.Anything, mock.Anything).Return(attendance.Receipt{}, errors.New("storing job: boom"))

		w := doRequest(t, newTestRouter(t, s, false), http.MethodPost, "/attendance", validBody)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Internal server error", decodeMap(t, w)["error"])
	})

	t.Run("error - internal error detailed in development", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("Submit", mock.Anything, mock.Anything).Return(attendance.Receipt{}, errors.New("storing job: boom"))

		w := doRequest(t, newTestRouter(t, s, true), http.MethodPost, "/attendance", validBody)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "storing job: boom", decodeMap(t, w)["error"])
	})
}

func TestGetStatus(t *testing.T) {
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	t.Run("success - processing", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("Status", mock.Anything, "job-1").
			Return(attendance.NewJob("job-1", attendance.Login, "Maria", created), nil)

		w := doRequest(t, newTestRouter(t, s, false), http.MethodGet, "/status/job-1", "")

		assert.Equal(t, http.StatusOK, w.Code)
		result := decodeMap(t, w)
		assert.Equal(t, "processing", result["status"])
		assert.Equal(t, "login", result["action"])
		assert.Equal(t, "Maria", result["name"])
		assert.Equal(t, "2024-01-01T09:00:00.000Z", result["timestamp"])
		assert.NotContains(t, result, "error")
		assert.NotContains(t, result, "downstreamResponse")
	})

	t.Run("success - delivered", func(t *testing.T) {
		job := attendance.NewJob("job-2", attendance.Logout, "Maria", created)
		require.NoError(t, job.Succeed(json.RawMessage(`{"recorded":true}`), created.Add(time.Second)))
		s := mocks.NewUseCase(t)
		s.On("Status", mock.Anything, "job-2").Return(job, nil)

		w := doRequest(t, newTestRouter(t, s, false), http.MethodGet, "/status/job-2", "")

		assert.Equal(t, http.StatusOK, w.Code)
		result := decodeMap(t, w)
		assert.Equal(t, "success", result["status"])
		assert.Equal(t, map[string]any{"recorded": true}, result["downstreamResponse"])
	})

	t.Run("success - failed", func(t *testing.T) {
		job := attendance.NewJob("job-3", attendance.Login, "Maria", created)
		require.NoError(t, job.Fail("webhook responded with status 502", created.Add(time.Second)))
		s := mocks.NewUseCase(t)
		s.On("Status", mock.Anything, "job-3").Return(job, nil)

		w := doRequest(t, newTestRouter(t, s, false), http.MethodGet, "/status/job-3", "")

		result := decodeMap(t, w)
		assert.Equal(t, "failed", result["status"])
		assert.Equal(t, "webhook responded with status 502", result["error"])
	})

	t.Run("error - not found", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("Status", mock.Anything, "missing").Return(attendance.Job{}, attendance.ErrNotFound)

		w := doRequest(t, newTestRouter(t, s, false), http.MethodGet, "/status/missing", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, map[string]any{"status": "not_found"}, decodeMap(t, w))
	})
}

func TestGetRecentActivities(t *testing.T) {
	t.Run("success - newest first", func(t *testing.T) {
		base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
		s := mocks.NewUseCase(t)
		s.On("RecentActivities", mock.Anything, attendance.MaxRecentActivities).Return([]attendance.Job{
			attendance.NewJob("b", attendance.Logout, "Bruno", base.Add(time.Minute)),
			attendance.NewJob("a", attendance.Login, "Ana", base),
		}, nil)

		w := doRequest(t, newTestRouter(t, s, false), http.MethodGet, "/recent-activities", "")

		assert.Equal(t, http.StatusOK, w.Code)
		var results []activityResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
		require.Len(t, results, 2)
		assert.Equal(t, "b", results[0].JobID)
		assert.Equal(t, "logout", results[0].Action)
		assert.Equal(t, "2024-01-01T09:01:00.000Z", results[0].Timestamp)
	})

	t.Run("success - empty list", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("RecentActivities", mock.Anything, attendance.MaxRecentActivities).Return(nil, nil)

		w := doRequest(t, newTestRouter(t, s, false), http.MethodGet, "/recent-activities", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})
}

func TestRouter(t *testing.T) {
	t.Run("health", func(t *testing.T) {
		w := doRequest(t, newTestRouter(t, mocks.NewUseCase(t), false), http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusOK, w.Code)
		result := decodeMap(t, w)
		assert.Equal(t, "healthy", result["status"])
		assert.NotEmpty(t, result["timestamp"])
	})

	t.Run("unknown route", func(t *testing.T) {
		w := doRequest(t, newTestRouter(t, mocks.NewUseCase(t), false), http.MethodGet, "/nope", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Endpoint not found", decodeMap(t, w)["error"])
	})

	t.Run("wrong method", func(t *testing.T) {
		w := doRequest(t, newTestRouter(t, mocks.NewUseCase(t), false), http.MethodGet, "/attendance", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Endpoint not found", decodeMap(t, w)["error"])
	})

	t.Run("panic becomes JSON 500", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("Status", mock.Anything, "boom").Run(func(args mock.Arguments) {
			panic("store exploded")
		}).Return(attendance.Job{}, nil)

		prod := doRequest(t, newTestRouter(t, s, false), http.MethodGet, "/status/boom", "")
		assert.Equal(t, http.StatusInternalServerError, prod.Code)
		assert.Equal(t, "Internal server error", decodeMap(t, prod)["error"])

		dev := doRequest(t, newTestRouter(t, s, true), http.MethodGet, "/status/boom", "")
		assert.Equal(t, http.StatusInternalServerError, dev.Code)
		assert.Equal(t, "store exploded", decodeMap(t, dev)["error"])
	})

	t.Run("metrics mounted when configured", func(t *testing.T) {
		h := Handlers(context.Background(), mocks.NewUseCase(t), Options{
			Logger: zerolog.Nop(),
			Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("attendance_jobs 1\n"))
			}),
		})

		w := doRequest(t, h, http.MethodGet, "/metrics", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "attendance_jobs")
	})
}

func TestRecoverer(t *testing.T) {
	t.Run("success - started response is not overwritten", func(t *testing.T) {
		h := recoverer(zerolog.Nop(), true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
			w.Write([]byte("partial"))
			panic("late failure")
		}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.NotPanics(t, func() { h.ServeHTTP(w, req) })

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "partial", w.Body.String())
	})

	t.Run("error - untouched response becomes JSON 500", func(t *testing.T) {
		h := recoverer(zerolog.Nop(), false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("early failure")
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Internal server error", decodeMap(t, w)["error"])
	})
}

func TestPostAttendance_BodyLimit(t *testing.T) {
	s := mocks.NewUseCase(t)
	big := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `","department":"Ops","date":"2024-01-01","time":"09:00","action":"login"}`

	w := doRequest(t, newTestRouter(t, s, false), http.MethodPost, "/attendance", big)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "Request body too large", decodeMap(t, w)["error"])
	s.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}
