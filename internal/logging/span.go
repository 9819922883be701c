package logging

import (
	"context"
	"time"
)

// maxSpanErrLen bounds the err attribute of span end lines.
const maxSpanErrLen = 32

// Span emits "<kind>:<operation>/S" and returns a context carrying a logger
// annotated with resourceId, plus a func that emits the matching end line:
//
//	<kind>:<operation>/EOK    when err is nil
//	<kind>:<operation>/EFAIL  otherwise
//
// All span lines are logged at INFO level with the elapsed seconds attached.
//
//	ctx, end := logging.Span(ctx, "CMD", "deployment.run", id)
//	defer func() { end(err) }()
func Span(ctx context.Context, kind, operation, resourceID string, kv ...any) (context.Context, func(err error, kv ...any)) {
	startAt := time.Now()
	logger := FromContext(ctx).With("resourceId", resourceID)
	ctx = WithLogger(ctx, logger)
	prefix := kind + ":" + operation
	logger.Info(ctx, prefix+"/S", kv...)

	return ctx, func(err error, kv ...any) {
		msg, errStr := prefix+"/EOK", ""
		if err != nil {
			msg = prefix + "/EFAIL"
			errStr = Truncate(err.Error(), maxSpanErrLen)
		}
		attrs := append([]any{"err", errStr, "elapsed", time.Since(startAt).Seconds()}, kv...)
		logger.Info(ctx, msg, attrs...)
	}
}

// Truncate shortens s to n bytes followed by "...".
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
