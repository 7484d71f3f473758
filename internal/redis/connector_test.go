package redis

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/marks/internal/logger"
)

func TestConnectRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConnectOptions)
	}{
		{"empty address", func(o *ConnectOptions) { o.Addr = "" }},
		{"zero connect timeout", func(o *ConnectOptions) { o.ConnectTimeout = 0 }},
		{"zero retry interval", func(o *ConnectOptions) { o.RetryInterval = 0 }},
		{"zero max wait", func(o *ConnectOptions) { o.MaxWait = 0 }},
		{"zero ping timeout", func(o *ConnectOptions) { o.PingTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultConnectOptions("localhost:6379")
			tt.mutate(&opts)
			_, err := Connect(context.Background(), opts, logger.Nop())
			assert.Error(t, err)
		})
	}
}

func TestConnectGivesUpAfterTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	opts := DefaultConnectOptions(addr)
	opts.ConnectTimeout = 200 * time.Millisecond
	opts.RetryInterval = 20 * time.Millisecond
	opts.PingTimeout = 50 * time.Millisecond

	start := time.Now()
	_, err = Connect(context.Background(), opts, logger.Nop())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
