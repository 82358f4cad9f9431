package routes

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/marcelsud/attendance-relay/attendance"
	"github.com/marcelsud/attendance-relay/signature"
)

/* Route maps an attendance action to the webhook that receives it
 */
type Route struct {
	Action        attendance.Action
	TargetURL     string
	SigningSecret string // Optional: Standard Webhooks signing secret (whsec_ prefix)
}

// Validate checks if the route configuration is valid
func (r *Route) Validate() error {
	if err := r.Action.Validate(); err != nil {
		return fmt.Errorf("invalid route action: %w", err)
	}
	if r.TargetURL == "" {
		return fmt.Errorf("target_url cannot be empty for action %s", r.Action)
	}
	u, err := url.Parse(r.TargetURL)
	if err != nil {
		return fmt.Errorf("invalid target_url for action %s: %w", r.Action, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("target_url must use http or https for action %s (got %q)", r.Action, u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return fmt.Errorf("target_url is missing a host for action %s", r.Action)
	}
	if r.SigningSecret != "" {
		if _, err := signature.ParseSecret(r.SigningSecret); err != nil {
			return fmt.Errorf("invalid signing_secret for action %s: %w", r.Action, err)
		}
	}
	return nil
}

// Endpoint converts the route into what the forwarder needs
func (r *Route) Endpoint() attendance.Endpoint {
	return attendance.Endpoint{
		URL:           r.TargetURL,
		SigningSecret: r.SigningSecret,
	}
}
