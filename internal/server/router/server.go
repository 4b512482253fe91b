package router

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/mamadbah2/stockdesk/internal/config"
)

// NewServer wraps handler in an http.Server whose request contexts are
// cancelled once Shutdown starts, so long-lived event streams end with it.
func NewServer(handler http.Handler, cfg config.ServerConfig) *http.Server {
	baseCtx, cancel := context.WithCancel(context.Background())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancel)
	return srv
}
