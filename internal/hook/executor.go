// Package hook runs user supplied callbacks at fixed points of a release.
package hook

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/compozy/tagrelease/internal/domain"
)

// Func is a lifecycle callback. It receives the project and the resolved tags.
type Func func(ctx context.Context, project domain.Project, tags domain.TagResult) error

// Set maps hook names to callbacks. A missing entry is a no-op.
type Set map[domain.HookName]Func

// Executor dispatches hooks by name.
type Executor struct {
	hooks  Set
	logger *zap.Logger
}

// NewExecutor creates an Executor over hooks. A nil logger disables logging.
func NewExecutor(hooks Set, logger *zap.Logger) *Executor {
	if hooks == nil {
		hooks = Set{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{hooks: hooks, logger: logger}
}

// Execute runs the hook registered under name. Returned errors and panics are
// reported the same way, with the hook name in the message. Panics with a
// non-error value and aborts are AbortErrors; genuine errors become
// InternalErrors carrying the cause and a stack trace.
func (e *Executor) Execute(
	ctx context.Context,
	name domain.HookName,
	project domain.Project,
	tags domain.TagResult,
) (err error) {
	fn, ok := e.hooks[name]
	if !ok || fn == nil {
		return nil
	}
	e.logger.Debug("running hook", zap.String("hook", name.String()), zap.String("next", tags.Next))
	defer func() {
		if r := recover(); r != nil {
			err = wrapPanic(name, r, debug.Stack())
		}
		if err != nil {
			e.logger.Debug("hook failed", zap.String("hook", name.String()), zap.Error(err))
		}
	}()
	if hookErr := fn(ctx, project, tags); hookErr != nil {
		return wrapError(name, hookErr, nil)
	}
	return nil
}

func message(name domain.HookName, msg string) string {
	return fmt.Sprintf("Error encountered in `%s` hook: \"%s\"", name, msg)
}

func wrapError(name domain.HookName, err error, stack []byte) error {
	msg := message(name, err.Error())
	if domain.IsAbort(err) {
		return &domain.AbortError{Msg: msg, Err: err}
	}
	var internal *domain.InternalError
	if errors.As(err, &internal) {
		stack = internal.Stack
	}
	return domain.NewInternalError(msg, err, stack)
}

func wrapPanic(name domain.HookName, r any, stack []byte) error {
	if err, ok := r.(error); ok {
		return wrapError(name, err, stack)
	}
	return domain.Abort(message(name, fmt.Sprint(r)))
}
