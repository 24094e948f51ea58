package faas

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/utafrali/brands-faas/pkg/errors"
	"github.com/utafrali/brands-faas/pkg/logger"
)

// Function is a deployable handler. Handle must not write anywhere; it only
// returns a Result.
type Function interface {
	Name() string
	Handle(ctx context.Context, ev *Event) Result
}

// HandlerFunc adapts a plain function to the Function interface.
type HandlerFunc struct {
	FuncName string
	Fn       func(ctx context.Context, ev *Event) Result
}

func (h HandlerFunc) Name() string { return h.FuncName }

func (h HandlerFunc) Handle(ctx context.Context, ev *Event) Result { return h.Fn(ctx, ev) }

// Invoke runs fn in-process. The event is normalized first, a call id is
// attached to ctx when absent, and a panic escaping fn is turned into a 500
// {"error": "..."} result.
func Invoke(ctx context.Context, fn Function, ev *Event) (res Result) {
	if ev == nil {
		ev = &Event{}
	}
	ev.normalize()

	if logger.CallIDFromContext(ctx) == "" {
		callID := ev.Header("x-call-id")
		if callID == "" {
			callID = uuid.New().String()
		}
		ctx = logger.WithCallID(ctx, callID)
	}
	ctx = logger.WithFunction(ctx, fn.Name())

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err := apperrors.FromPanic(rec)
			logger.FromContext(ctx).ErrorContext(ctx, "function panicked",
				slog.String("function", fn.Name()),
				slog.String("path", ev.Path),
				slog.String("error", err.Error()),
			)
			res = errorResult(http.StatusInternalServerError, err.Error())
		}
		observe(fn.Name(), res.StatusCode, time.Since(start))
	}()

	res = fn.Handle(ctx, ev)
	if res.StatusCode == 0 {
		res.StatusCode = http.StatusOK
	}
	return res
}

func statusLabel(code int) string {
	return strconv.Itoa(code)
}
