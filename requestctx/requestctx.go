// Package requestctx carries request scoped identifiers through context.Context.
package requestctx

import (
	"context"
	"watch-party/domain"
)

type contextKey int

const (
	connectionIDKey contextKey = iota
	viewerIDKey
)

// WithConnectionID marks ctx as originating from an interactive connection.
func WithConnectionID(ctx context.Context, connectionID string) context.Context {
	return context.WithValue(ctx, connectionIDKey, connectionID)
}

// ConnectionIDFromContext returns an empty string outside interactive calls.
func ConnectionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(connectionIDKey).(string)
	return id
}

func WithViewerID(ctx context.Context, viewerID domain.ViewerID) context.Context {
	return context.WithValue(ctx, viewerIDKey, viewerID)
}

func ViewerIDFromContext(ctx context.Context) (domain.ViewerID, bool) {
	id, ok := ctx.Value(viewerIDKey).(domain.ViewerID)
	return id, ok
}
