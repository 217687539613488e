package utils

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingService(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	assert.NoError(t, PingService("http://"+addr, time.Second))

	require.NoError(t, ln.Close())
	assert.Error(t, PingService("http://"+addr, 200*time.Millisecond))
	assert.Error(t, PingService("://bad", time.Second))
}

func TestProbeHTTP(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer failing.Close()

	assert.NoError(t, ProbeHTTP(ok.URL, time.Second))
	assert.Error(t, ProbeHTTP(failing.URL, time.Second))
}
