package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/utafrali/brands-faas/pkg/httpclient"
	"github.com/utafrali/brands-faas/pkg/logger"

	"github.com/utafrali/brands-faas/internal/catalog"
	"github.com/utafrali/brands-faas/internal/cli"
	"github.com/utafrali/brands-faas/internal/client"
	"github.com/utafrali/brands-faas/internal/config"
	"github.com/utafrali/brands-faas/internal/faas"
	"github.com/utafrali/brands-faas/internal/function"
	"github.com/utafrali/brands-faas/internal/service"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: brands-cli <command> [flags]

Commands:
  invoke   run functions in-process from an interactive prompt (default)
  call     call a deployed function through the gateway

Run "brands-cli <command> -h" for command flags.`)
}

func main() {
	cmd, args := "invoke", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch cmd {
	case "invoke":
		err = runInvoke(ctx, args)
	case "call":
		err = runCall(ctx, args)
	case "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runInvoke(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("invoke", flag.ExitOnError)
	fn := fs.String("function", function.BrandsName, "function to start with ("+function.BrandsName+" or "+function.InfoName+")")
	_ = fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.FunctionName, cfg.LogLevel)

	fns := localFunctions(cfg, log)
	for i, f := range fns {
		if f.Name() == *fn {
			fns[0], fns[i] = fns[i], fns[0]
		}
	}
	if fns[0].Name() != *fn {
		return fmt.Errorf("unknown function %q", *fn)
	}

	repl := &cli.REPL{In: os.Stdin, Out: os.Stdout, Functions: fns}
	return repl.Run(ctx)
}

func runCall(ctx context.Context, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("call", flag.ExitOnError)
	gateway := fs.String("gateway", cfg.GatewayURL, "gateway base URL")
	fn := fs.String("function", function.BrandsName, "deployed function name")
	basePath := fs.String("base", "", "function mount path (default /function/<function>)")
	method := fs.String("method", http.MethodGet, "HTTP method")
	data := fs.String("data", "", "JSON request body")
	fallback := fs.Bool("fallback", true, "answer in-process when the gateway circuit is open")
	timeout := fs.Duration("timeout", 10*time.Second, "request timeout")
	_ = fs.Parse(args)

	path := "/"
	var query url.Values
	if fs.NArg() > 0 {
		u, err := url.Parse(fs.Arg(0))
		if err != nil {
			return fmt.Errorf("parse path: %w", err)
		}
		path, query = u.Path, u.Query()
	}

	mount := *basePath
	if mount == "" {
		mount = "/function/" + *fn
	}

	log := logger.New(cfg.FunctionName, cfg.LogLevel)
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = *timeout

	opts := []client.Option{
		client.WithBasePath(mount),
		client.WithBreaker(cfg.GatewayBreaker(client.BreakerName)),
	}
	if *fallback {
		for _, f := range localFunctions(cfg, log) {
			if f.Name() == *fn {
				opts = append(opts, client.WithFallback(f))
			}
		}
	}

	c, err := client.New(*gateway, httpCfg, log, opts...)
	if err != nil {
		return err
	}

	return cli.Call(ctx, c, os.Stdout, cli.CallOptions{
		Method:   strings.ToUpper(*method),
		Path:     path,
		Query:    query,
		Data:     *data,
		Function: *fn,
		Gateway:  *gateway,
	})
}

func localFunctions(cfg *config.Config, log *slog.Logger) []faas.Function {
	svc := service.NewBrandService(catalog.Default(), nil, log)
	return []faas.Function{
		function.NewBrands(svc, function.WithMaxLimit(cfg.BrandsMaxLimit), function.WithLogger(log)),
		function.NewInfo(function.WithLogger(log)),
	}
}
