package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/utafrali/brands-faas/internal/client"
)

// CallOptions describes one request sent through the gateway.
type CallOptions struct {
	Method string
	Path   string
	Query  url.Values
	Data   string
	// Function is used in the printed curl examples, e.g. "brands-list".
	Function string
	Gateway  string
}

// Call sends the request with c and prints the status and body to out. On
// success it also prints curl equivalents for the gateway.
func Call(ctx context.Context, c *client.Client, out io.Writer, opts CallOptions) error {
	fmt.Fprintf(out, "Calling %s %s\n", opts.Method, c.URL(opts.Path, opts.Query))
	if opts.Data != "" {
		fmt.Fprintf(out, "Payload: %s\n", opts.Data)
	}

	resp, err := c.Call(ctx, opts.Method, opts.Path, opts.Query, []byte(opts.Data))
	if err != nil {
		fmt.Fprintln(out, "Make sure the gateway is running and the function is deployed:")
		fmt.Fprintf(out, "  faas-cli list --gateway %s\n", opts.Gateway)
		return fmt.Errorf("call %s: %w", opts.Function, err)
	}

	fmt.Fprintf(out, "Status: %d\n", resp.StatusCode)
	if resp.Fallback {
		fmt.Fprintln(out, "Answered locally: gateway circuit is open")
	}
	fmt.Fprintln(out, "Response:")
	fmt.Fprintln(out, string(resp.Body))
	fmt.Fprintln(out)
	PrintCurlExamples(out, opts.Gateway, opts.Function)
	return nil
}

// PrintCurlExamples writes curl commands invoking function through gateway.
func PrintCurlExamples(out io.Writer, gateway, function string) {
	base := strings.TrimSuffix(gateway, "/")
	fmt.Fprintln(out, "Equivalent curl commands:")
	fmt.Fprintf(out, "  curl %s/function/%s/brands?limit=3\n", base, function)
	fmt.Fprintf(out, "  curl -X POST %s/function/%s -H \"Content-Type: application/json\" -d '{\"message\": \"Hello\"}'\n", base, function)
	fmt.Fprintf(out, "  curl -s %s/function/%s/categories | jq .\n", base, function)
	fmt.Fprintf(out, "  curl -X POST %s/async-function/%s -d '{}'\n", base, function)
}
