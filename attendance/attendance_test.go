package attendance_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/marcelsud/attendance-relay/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEvent() attendance.Event {
	return attendance.Event{
		Name:       "Maria Silva",
		Department: "Engineering",
		Date:       "2024-01-01",
		Time:       "09:00",
		Action:     "login",
	}
}

func TestEvent_Validate(t *testing.T) {
	t.Run("success - login", func(t *testing.T) {
		action, err := validEvent().Validate()

		require.NoError(t, err)
		assert.Equal(t, attendance.Login, action)
	})

	t.Run("success - logout", func(t *testing.T) {
		event := validEvent()
		event.Action = "logout"

		action, err := event.Validate()

		require.NoError(t, err)
		assert.Equal(t, attendance.Logout, action)
	})

	t.Run("error - missing fields listed in order", func(t *testing.T) {
		event := attendance.Event{Name: "Maria", Time: "   ", Action: "login"}

		_, err := event.Validate()

		require.Error(t, err)
		assert.True(t, errors.Is(err, attendance.ErrInvalidRequest))
		assert.Equal(t, "Missing required fields: department, date, time", err.Error())
	})

	t.Run("error - whitespace name counts as missing", func(t *testing.T) {
		event := validEvent()
		event.Name = "  \t"

		_, err := event.Validate()

		require.Error(t, err)
		assert.Equal(t, "Missing required fields: name", err.Error())
	})

	t.Run("error - unknown action", func(t *testing.T) {
		event := validEvent()
		event.Action = "lunch"

		_, err := event.Validate()

		require.Error(t, err)
		var verr *attendance.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Action must be either 'login' or 'logout'", verr.Message)
	})

	t.Run("error - action is case sensitive", func(t *testing.T) {
		event := validEvent()
		event.Action = "LOGIN"

		_, err := event.Validate()

		require.ErrorIs(t, err, attendance.ErrInvalidRequest)
	})
}

func TestJob_Transitions(t *testing.T) {
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	finished := created.Add(2 * time.Second)

	t.Run("success - processing to success", func(t *testing.T) {
		job := attendance.NewJob("job-1", attendance.Login, "Maria", created)
		assert.Equal(t, attendance.Processing, job.Status)

		require.NoError(t, job.Succeed(json.RawMessage(`{"ok":true}`), finished))

		assert.Equal(t, attendance.Success, job.Status)
		assert.JSONEq(t, `{"ok":true}`, string(job.Response))
		assert.Empty(t, job.Error)
		assert.Equal(t, created, job.CreatedAt)
		assert.Equal(t, finished, job.UpdatedAt)
	})

	t.Run("success - processing to failed", func(t *testing.T) {
		job := attendance.NewJob("job-2", attendance.Logout, "Maria", created)

		require.NoError(t, job.Fail("webhook responded with status 500", finished))

		assert.Equal(t, attendance.Failed, job.Status)
		assert.Equal(t, "webhook responded with status 500", job.Error)
		assert.Nil(t, job.Response)
	})

	t.Run("error - terminal state is final", func(t *testing.T) {
		job := attendance.NewJob("job-3", attendance.Login, "Maria", created)
		require.NoError(t, job.Fail("boom", finished))

		err := job.Succeed(json.RawMessage(`{}`), finished)
		require.ErrorIs(t, err, attendance.ErrInvalidTransition)
		err = job.Fail("again", finished)
		require.ErrorIs(t, err, attendance.ErrInvalidTransition)

		assert.Equal(t, attendance.Failed, job.Status)
		assert.Equal(t, "boom", job.Error)
	})
}

func TestFormatTimestamp(t *testing.T) {
	local := time.FixedZone("BRT", -3*60*60)
	ts := time.Date(2024, 1, 1, 6, 0, 0, 123_000_000, local)

	assert.Equal(t, "2024-01-01T09:00:00.123Z", attendance.FormatTimestamp(ts))
}

func TestAction(t *testing.T) {
	tests := []struct {
		in      string
		want    attendance.Action
		wantErr bool
	}{
		{"login", attendance.Login, false},
		{"logout", attendance.Logout, false},
		{"", 0, true},
		{"checkin", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := attendance.ParseAction(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Error(t, got.Validate())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
			assert.NoError(t, got.Validate())
		})
	}
}

func TestStatus(t *testing.T) {
	for _, s := range []attendance.Status{attendance.Processing, attendance.Success, attendance.Failed} {
		t.Run(s.String(), func(t *testing.T) {
			assert.NoError(t, s.Validate())
			assert.NotEqual(t, "unknown", s.String())
		})
	}

	t.Run("invalid", func(t *testing.T) {
		assert.Error(t, attendance.Status(42).Validate())
		assert.Equal(t, "unknown", attendance.Status(42).String())
	})
}
