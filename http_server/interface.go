package http_server

import (
	"context"
	"net/http"
)

type Server interface {
	// Run serves until ctx is cancelled, then shuts down gracefully.
	Run(ctx context.Context) error
	Handler() http.Handler
}
