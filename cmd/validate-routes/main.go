package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/marcelsud/attendance-relay/attendance"
	"github.com/marcelsud/attendance-relay/routes"
	"github.com/marcelsud/attendance-relay/signature"
)

/* validate-routes - Standalone CLI tool to validate routes.yaml
 * Usage: go run cmd/validate-routes/main.go [routes.yaml]
 *        go run cmd/validate-routes/main.go --generate-secret
 * Exit codes: 0 = valid, 1 = invalid
 */

const secretSize = 32

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	routesFile := "routes.yaml"
	if len(args) > 0 {
		routesFile = args[0]
	}

	if routesFile == "--generate-secret" {
		secret, err := signature.GenerateSecret(secretSize)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, secret.String())
		return 0
	}

	fmt.Fprintf(stdout, "Validating routes file: %s\n", routesFile)
	fmt.Fprintln(stdout, strings.Repeat("-", 50))

	loader := routes.NewLoader()
	if err := loader.Load(routesFile); err != nil {
		fmt.Fprintf(stderr, "❌ VALIDATION FAILED\n\n")
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	loadedRoutes := loader.List()
	fmt.Fprintf(stdout, "✓ VALIDATION PASSED\n\n")
	fmt.Fprintf(stdout, "Loaded %d route(s):\n", len(loadedRoutes))

	unsigned := false
	for i, route := range loadedRoutes {
		fmt.Fprintf(stdout, "\n%d. Action: %s\n", i+1, route.Action)
		fmt.Fprintf(stdout, "   Target URL: %s\n", route.TargetURL)
		if route.SigningSecret != "" {
			fmt.Fprintf(stdout, "   Signed:     yes\n")
		} else {
			unsigned = true
		}
	}
	if _, err := loader.Get(attendance.Logout); err != nil {
		fmt.Fprintf(stdout, "\nNote: no logout route, logout events go to the login endpoint\n")
	}
	if unsigned {
		if secret, err := signature.GenerateSecret(secretSize); err == nil {
			fmt.Fprintf(stdout, "\nTip: unsigned routes can use signing_secret: %q\n", secret.String())
		}
	}

	fmt.Fprintf(stdout, "\n✓ All routes are valid!\n")
	return 0
}
