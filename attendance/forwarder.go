package attendance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/marcelsud/attendance-relay/signature"
)

const (
	// DefaultDeliveryTimeout bounds a single outbound webhook call
	DefaultDeliveryTimeout = 30 * time.Second
	// UserAgent identifies the relay to downstream endpoints
	UserAgent = "attendance-relay/1.0"

	maxResponseBytes = 1 << 20
)

var defaultResponse = json.RawMessage(`{"status":"success"}`)

// DeliveryRecorder receives the outcome of every delivery attempt
type DeliveryRecorder interface {
	RecordDelivery(ctx context.Context, action Action, outcome Status, elapsed time.Duration)
}

// ForwarderOptions groups dependencies for Forwarder.
type ForwarderOptions struct {
	Repo      Repository       // Required: job store updated with the outcome
	Endpoints EndpointResolver // Required: action -> endpoint
	Client    *http.Client     // Optional: defaults to a plain client
	Timeout   time.Duration    // Optional: defaults to DefaultDeliveryTimeout
	Logger    zerolog.Logger
	Recorder  DeliveryRecorder // Optional
	Now       func() time.Time // Optional: defaults to time.Now
}

// Forwarder posts attendance events to the downstream webhook and records the result on the job
type Forwarder struct {
	repo      Repository
	endpoints EndpointResolver
	client    *http.Client
	timeout   time.Duration
	logger    zerolog.Logger
	recorder  DeliveryRecorder
	now       func() time.Time
}

// outboundPayload is the body sent to the webhook
type outboundPayload struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Action     string `json:"action"`
	JobID      string `json:"jobId"`
	Timestamp  string `json:"timestamp"`
}

// NewForwarder constructs a Forwarder
func NewForwarder(opts ForwarderOptions) (*Forwarder, error) {
	if opts.Repo == nil {
		return nil, errors.New("job repository is required")
	}
	if opts.Endpoints == nil {
		return nil, errors.New("endpoint resolver is required")
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultDeliveryTimeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Forwarder{
		repo:      opts.Repo,
		endpoints: opts.Endpoints,
		client:    client,
		timeout:   timeout,
		logger:    opts.Logger.With().Str("component", "forwarder").Logger(),
		recorder:  opts.Recorder,
		now:       now,
	}, nil
}

// Deliver sends the event and moves the job to its terminal state.
// It never returns an error or panics; every failure ends up on the job record.
func (f *Forwarder) Deliver(ctx context.Context, jobID string, event Event) {
	defer func() {
		// catches panics raised while recording the outcome
		if r := recover(); r != nil {
			f.logger.Error().Str("job_id", jobID).Interface("panic", r).Msg("delivery aborted")
		}
	}()

	start := f.now()
	// an unknown action is left for the resolver to route to its fallback endpoint
	action, _ := ParseAction(event.Action)

	response, err := f.safeSend(ctx, jobID, action, event)
	f.finish(ctx, jobID, action, start, response, err)
}

// safeSend turns a panic during the request into a delivery error
func (f *Forwarder) safeSend(ctx context.Context, jobID string, action Action, event Event) (response json.RawMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			response, err = nil, fmt.Errorf("delivery panicked: %v", r)
		}
	}()
	return f.send(ctx, jobID, action, event)
}

func (f *Forwarder) send(ctx context.Context, jobID string, action Action, event Event) (json.RawMessage, error) {
	endpoint, err := f.endpoints.Resolve(action)
	if err != nil {
		return nil, fmt.Errorf("resolving endpoint: %w", err)
	}

	body, err := json.Marshal(outboundPayload{
		Name:       strings.TrimSpace(event.Name),
		Department: event.Department,
		Date:       event.Date,
		Time:       event.Time,
		Action:     event.Action,
		JobID:      jobID,
		Timestamp:  FormatTimestamp(f.now()),
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if err := f.sign(req, endpoint, jobID, body); err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, fmt.Errorf("webhook request timed out after %s", f.timeout)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}

	return parseResponse(resp.Body), nil
}

func (f *Forwarder) sign(req *http.Request, endpoint Endpoint, jobID string, body []byte) error {
	if endpoint.SigningSecret == "" {
		return nil
	}
	secret, err := signature.ParseSecret(endpoint.SigningSecret)
	if err != nil {
		return fmt.Errorf("parsing signing secret: %w", err)
	}
	headers, err := signature.Headers(secret, jobID, f.now(), body)
	if err != nil {
		return fmt.Errorf("signing payload: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return nil
}

// parseResponse keeps a JSON body as-is and substitutes a placeholder for anything else
func parseResponse(r io.Reader) json.RawMessage {
	data, err := io.ReadAll(io.LimitReader(r, maxResponseBytes))
	if err != nil {
		return defaultResponse
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || !json.Valid(data) {
		return defaultResponse
	}
	return json.RawMessage(data)
}

func (f *Forwarder) finish(ctx context.Context, jobID string, action Action, start time.Time, response json.RawMessage, deliveryErr error) {
	outcome := Success
	if deliveryErr != nil {
		outcome = Failed
	}

	var transitionErr error
	updateErr := f.repo.Update(ctx, jobID, func(job *Job) {
		if deliveryErr != nil {
			transitionErr = job.Fail(deliveryErr.Error(), f.now())
			return
		}
		transitionErr = job.Succeed(response, f.now())
	})

	elapsed := f.now().Sub(start)
	f.record(ctx, jobID, action, outcome, elapsed)

	switch {
	case updateErr != nil:
		f.logger.Error().Err(updateErr).Str("job_id", jobID).Msg("recording delivery outcome")
	case transitionErr != nil:
		f.logger.Warn().Err(transitionErr).Str("job_id", jobID).Msg("job already finished")
	case deliveryErr != nil:
		f.logger.Warn().Err(deliveryErr).Str("job_id", jobID).Str("action", action.String()).
			Dur("elapsed", elapsed).Msg("delivery failed")
	default:
		f.logger.Info().Str("job_id", jobID).Str("action", action.String()).
			Dur("elapsed", elapsed).Msg("delivery succeeded")
	}
}

// record reports the delivery to the recorder; a failing recorder never affects the job
func (f *Forwarder) record(ctx context.Context, jobID string, action Action, outcome Status, elapsed time.Duration) {
	if f.recorder == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error().Str("job_id", jobID).Interface("panic", r).Msg("recording delivery metric")
		}
	}()
	f.recorder.RecordDelivery(ctx, action, outcome, elapsed)
}
