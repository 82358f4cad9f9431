package attendance

import "fmt"

/* Status represents the current state of a job delivery
 * Follows the lifecycle: Processing -> Success/Failed
 */
type Status int

const (
	Processing Status = iota + 1
	Success
	Failed
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case Processing:
		return "processing"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Validate checks if the status is valid
func (s Status) Validate() error {
	if s < Processing || s > Failed {
		return fmt.Errorf("invalid status: %d", s)
	}
	return nil
}
