package client

import (
	"context"
	"net/http"
	"net/url"
)

// AnalyticsAPI wraps /analytics
type AnalyticsAPI struct {
	conn
}

// Dashboard returns the backend's own aggregate for period (default "month")
func (a AnalyticsAPI) Dashboard(ctx context.Context, period string) Result[map[string]any] {
	if period == "" {
		period = "month"
	}
	return call[map[string]any](ctx, a.conn, request{
		op:       "analytics.dashboard",
		method:   http.MethodGet,
		path:     "/analytics/dashboard",
		query:    url.Values{"period": {period}},
		fallback: "Failed to fetch dashboard analytics",
	})
}
