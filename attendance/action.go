package attendance

import "fmt"

/* Action is the kind of attendance event being reported
 * Each action is delivered to its own downstream endpoint
 */
type Action int

const (
	Login Action = iota + 1
	Logout
)

// String returns the string representation of the action
func (a Action) String() string {
	switch a {
	case Login:
		return "login"
	case Logout:
		return "logout"
	default:
		return "unknown"
	}
}

// ParseAction creates an Action from its wire name
func ParseAction(s string) (Action, error) {
	switch s {
	case "login":
		return Login, nil
	case "logout":
		return Logout, nil
	default:
		return 0, fmt.Errorf("invalid action: %q", s)
	}
}

// Validate checks if the action is one of the known values
func (a Action) Validate() error {
	if a != Login && a != Logout {
		return fmt.Errorf("invalid action: %d", a)
	}
	return nil
}
