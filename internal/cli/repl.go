package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/utafrali/brands-faas/internal/faas"
)

// REPL reads invocations from In, runs them in-process and prints the result
// to Out. Each line is one of:
//
//	/brands?category=Technology      GET with query
//	POST /                           explicit method
//	{"path": "/brands/3"}            full event as JSON
//	{"message": "hi"}                POST body for "/"
//	use get-info                     switch function
//	exit | quit
type REPL struct {
	In        io.Reader
	Out       io.Writer
	Functions []faas.Function
}

// Run processes lines until exit, EOF or ctx cancellation.
func (r *REPL) Run(ctx context.Context) error {
	if len(r.Functions) == 0 {
		return fmt.Errorf("no functions to invoke")
	}
	current := r.Functions[0]

	fmt.Fprintln(r.Out, "Interactive function tester")
	fmt.Fprintln(r.Out, strings.Repeat("=", 37))
	fmt.Fprintf(r.Out, "Functions: %s (active: %s)\n", strings.Join(r.names(), ", "), current.Name())
	fmt.Fprintln(r.Out, `Enter a path like /brands?limit=3, a JSON event, "use <function>" or "exit".`)

	scanner := bufio.NewScanner(r.In)
	scanner.Buffer(make([]byte, 0, 64*1024), faas.MaxBodyBytes)

	for {
		fmt.Fprint(r.Out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.Out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		switch lower := strings.ToLower(line); {
		case line == "":
			continue
		case lower == "exit" || lower == "quit":
			fmt.Fprintln(r.Out, "Goodbye!")
			return nil
		case strings.HasPrefix(lower, "use "):
			name := strings.TrimSpace(line[len("use "):])
			fn, ok := r.lookup(name)
			if !ok {
				fmt.Fprintf(r.Out, "unknown function %q, have: %s\n", name, strings.Join(r.names(), ", "))
				continue
			}
			current = fn
			fmt.Fprintf(r.Out, "active function: %s\n", current.Name())
			continue
		}

		ev, err := ParseLine(line)
		if err != nil {
			fmt.Fprintf(r.Out, "error: %v\n", err)
			continue
		}

		res := faas.Invoke(ctx, current, ev)
		fmt.Fprintf(r.Out, "%s %s -> %d\n", ev.Method, ev.Path, res.StatusCode)
		fmt.Fprintln(r.Out, string(res.Body))
	}
}

func (r *REPL) names() []string {
	names := make([]string, 0, len(r.Functions))
	for _, fn := range r.Functions {
		names = append(names, fn.Name())
	}
	return names
}

func (r *REPL) lookup(name string) (faas.Function, bool) {
	i := slices.IndexFunc(r.Functions, func(fn faas.Function) bool { return fn.Name() == name })
	if i < 0 {
		return nil, false
	}
	return r.Functions[i], true
}

var methods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

// ParseLine turns one REPL line into an event.
func ParseLine(line string) (*faas.Event, error) {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "{") {
		return parseJSONLine(line)
	}

	method := http.MethodGet
	if head, rest, ok := strings.Cut(line, " "); ok && slices.Contains(methods, strings.ToUpper(head)) {
		method = strings.ToUpper(head)
		line = strings.TrimSpace(rest)
	}

	u, err := url.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("parse path: %w", err)
	}
	path := u.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	query := make(map[string]string)
	for k, vs := range u.Query() {
		if len(vs) > 0 {
			query[k] = vs[len(vs)-1]
		}
	}

	return &faas.Event{
		Method:  method,
		Path:    path,
		Query:   query,
		Headers: map[string]string{},
	}, nil
}

// parseJSONLine accepts either a full event or a bare body. A bare body is
// POSTed to "/" with a JSON content type.
func parseJSONLine(line string) (*faas.Event, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	_, hasPath := fields["path"]
	_, hasMethod := fields["method"]
	if hasPath || hasMethod {
		var ev faas.Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			return nil, fmt.Errorf("invalid event: %w", err)
		}
		return &ev, nil
	}

	var body any
	if err := json.Unmarshal([]byte(line), &body); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return &faas.Event{
		Method:  http.MethodPost,
		Path:    "/",
		Headers: map[string]string{"content-type": "application/json"},
		Body:    body,
	}, nil
}
