package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewAppliesDefaultDeadlines(t *testing.T) {
	srv := New(":0", http.NewServeMux(), Timeouts{})

	assert.Equal(t, ":0", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, defaultReadTimeout, srv.ReadTimeout)
	assert.Equal(t, defaultWriteTimeout, srv.WriteTimeout)
	assert.Equal(t, defaultIdleTimeout, srv.IdleTimeout)
}

func TestNewHonorsConfiguredDeadlines(t *testing.T) {
	srv := New(":0", http.NewServeMux(), Timeouts{
		Read:  time.Second,
		Write: 2 * time.Second,
		Idle:  3 * time.Second,
	})

	assert.Equal(t, time.Second, srv.ReadTimeout)
	assert.Equal(t, 2*time.Second, srv.WriteTimeout)
	assert.Equal(t, 3*time.Second, srv.IdleTimeout)
}
