package attendance

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the ISO-8601 form used for every timestamp the service emits
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in UTC using TimestampLayout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

/* Event is an attendance check-in or check-out as submitted by a client
 * Uses value semantics as it represents data, not behavior
 */
type Event struct {
	Name       string
	Department string
	Date       string
	Time       string
	Action     string
}

// Validate checks that every field is present and the action is known
func (e Event) Validate() (Action, error) {
	var missing []string
	fields := []struct {
		name  string
		value string
	}{
		{"name", e.Name},
		{"department", e.Department},
		{"date", e.Date},
		{"time", e.Time},
		{"action", e.Action},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return 0, missingFieldsError(missing)
	}

	action, err := ParseAction(e.Action)
	if err != nil {
		return 0, invalidActionError()
	}
	return action, nil
}

// Job is the tracked record of one forwarded event
type Job struct {
	ID        string
	Status    Status
	Action    Action
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	// Error is set only when Status is Failed
	Error string
	// Response is set only when Status is Success
	Response json.RawMessage
}

// NewJob creates a job in the Processing state
func NewJob(id string, action Action, name string, now time.Time) Job {
	return Job{
		ID:        id,
		Status:    Processing,
		Action:    action,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Succeed moves a processing job to Success with the downstream response
func (j *Job) Succeed(response json.RawMessage, now time.Time) error {
	if j.Status != Processing {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, Success)
	}
	j.Status = Success
	j.Response = response
	j.UpdatedAt = now
	return nil
}

// Fail moves a processing job to Failed with a description of what went wrong
func (j *Job) Fail(reason string, now time.Time) error {
	if j.Status != Processing {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, Failed)
	}
	j.Status = Failed
	j.Error = reason
	j.UpdatedAt = now
	return nil
}

// Receipt is what the caller gets back synchronously from a submission
type Receipt struct {
	JobID  string
	Action Action
}

// Endpoint is a downstream webhook target
type Endpoint struct {
	URL           string
	SigningSecret string
}
