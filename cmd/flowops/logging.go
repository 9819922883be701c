package main

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kompox/flowops/internal/logging"
)

// timeNow is replaced in tests.
var timeNow = time.Now

func newRunID() string {
	return uuid.NewString()[:8]
}

// withCmdRunLogger opens a CMD span for a command operation:
//
//	ctx, cleanup := withCmdRunLogger(ctx, "deployment.run", ref)
//	defer func() { cleanup(err) }()
func withCmdRunLogger(ctx context.Context, operation, resourceID string) (context.Context, func(err error)) {
	ctx, end := logging.Span(ctx, "CMD", operation, resourceID)
	return ctx, func(err error) { end(err) }
}
