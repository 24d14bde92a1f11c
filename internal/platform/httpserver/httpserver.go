// Package httpserver builds the process's HTTP server. Receipt scans and
// field declarations arrive over slow rural connections, so the write
// deadline stays generous while header reads stay tight.
package httpserver

import (
	"net/http"
	"time"
)

// Timeouts bounds how long the server waits on either side of a request.
// Zero values fall back to the defaults below.
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

const (
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 2 * time.Minute
)

// New builds an HTTP server with the given handler and deadlines.
func New(addr string, handler http.Handler, timeouts Timeouts) *http.Server {
	if timeouts.Read == 0 {
		timeouts.Read = defaultReadTimeout
	}
	if timeouts.Write == 0 {
		timeouts.Write = defaultWriteTimeout
	}
	if timeouts.Idle == 0 {
		timeouts.Idle = defaultIdleTimeout
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeouts.Read,
		WriteTimeout:      timeouts.Write,
		IdleTimeout:       timeouts.Idle,
	}
}
