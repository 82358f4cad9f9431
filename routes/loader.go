package routes

import (
	"fmt"
	"os"
	"sort"

	"github.com/marcelsud/attendance-relay/attendance"
	"gopkg.in/yaml.v3"
)

/* Loader holds the webhook endpoint for each action
 * Routes come from a YAML file or are registered from environment configuration
 */

// Config represents the structure of the routes file
type Config struct {
	Routes []RouteConfig `yaml:"routes"`
}

// RouteConfig represents a single route in the YAML file
type RouteConfig struct {
	Action        string `yaml:"action"`
	TargetURL     string `yaml:"target_url"`
	SigningSecret string `yaml:"signing_secret"`
}

// Loader holds the loaded routes
type Loader struct {
	routes map[attendance.Action]*Route
}

// NewLoader creates a new route loader
func NewLoader() *Loader {
	return &Loader{
		routes: make(map[attendance.Action]*Route),
	}
}

// FromURLs builds a loader with one route per action, sharing an optional signing secret.
// An empty logoutURL leaves logout on the login endpoint.
func FromURLs(loginURL, logoutURL, signingSecret string) (*Loader, error) {
	l := NewLoader()
	if err := l.Register(&Route{Action: attendance.Login, TargetURL: loginURL, SigningSecret: signingSecret}); err != nil {
		return nil, err
	}
	if logoutURL == "" {
		return l, nil
	}
	if err := l.Register(&Route{Action: attendance.Logout, TargetURL: logoutURL, SigningSecret: signingSecret}); err != nil {
		return nil, err
	}
	return l, nil
}

// Load reads and parses a routes file
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading routes file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing routes YAML: %w", err)
	}

	for _, rc := range config.Routes {
		action, err := attendance.ParseAction(rc.Action)
		if err != nil {
			return fmt.Errorf("validating route: %w", err)
		}
		route := &Route{
			Action:        action,
			TargetURL:     rc.TargetURL,
			SigningSecret: rc.SigningSecret,
		}
		if err := l.Register(route); err != nil {
			return err
		}
	}

	if _, exists := l.routes[attendance.Login]; !exists {
		return fmt.Errorf("validating routes: a login route is required")
	}
	return nil
}

// Register validates and adds a route, replacing any existing route for the same action
func (l *Loader) Register(route *Route) error {
	if err := route.Validate(); err != nil {
		return fmt.Errorf("validating route: %w", err)
	}
	l.routes[route.Action] = route
	return nil
}

// Get retrieves the route for an action
func (l *Loader) Get(action attendance.Action) (*Route, error) {
	route, exists := l.routes[action]
	if !exists {
		return nil, fmt.Errorf("route not found: %s", action)
	}
	return route, nil
}

// Resolve returns the endpoint for an action.
// Actions without a route of their own fall back to the login endpoint.
func (l *Loader) Resolve(action attendance.Action) (attendance.Endpoint, error) {
	route, exists := l.routes[action]
	if !exists {
		route, exists = l.routes[attendance.Login]
	}
	if !exists {
		return attendance.Endpoint{}, fmt.Errorf("route not found: %s", action)
	}
	return route.Endpoint(), nil
}

// List returns all loaded routes ordered by action
func (l *Loader) List() []*Route {
	routes := make([]*Route, 0, len(l.routes))
	for _, route := range l.routes {
		routes = append(routes, route)
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Action < routes[j].Action })
	return routes
}
