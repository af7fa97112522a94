package socket_test

import (
	"fmt"
	"testing"

	"github.com/nabbar/tcpsock/socket"
)

func TestErrorFilter(t *testing.T) {
	tests := []struct {
		nam      string
		err      error
		wantNil  bool
		wantText string
	}{
		{nam: "nil error", err: nil, wantNil: true},
		{nam: "closed connection error", err: fmt.Errorf("use of closed network connection"), wantNil: true},
		{nam: "normal error", err: fmt.Errorf("connection timeout"), wantText: "connection timeout"},
		{nam: "contextualized closed error", err: fmt.Errorf("read tcp 127.0.0.1:8080->127.0.0.1:1: use of closed network connection"), wantText: "read tcp 127.0.0.1:8080->127.0.0.1:1: use of closed network connection"},
	}

	for _, tc := range tests {
		t.Run(tc.nam, func(t *testing.T) {
			res := socket.ErrorFilter(tc.err)
			if tc.wantNil {
				if res != nil {
					t.Errorf("expected nil, got %v", res)
				}
				return
			}
			if res == nil || res.Error() != tc.wantText {
				t.Errorf("got %v want %q", res, tc.wantText)
			}
		})
	}
}

func TestConnState_String(t *testing.T) {
	tests := []struct {
		sta socket.ConnState
		exp string
	}{
		{socket.ConnectionDial, "Dial Connection"},
		{socket.ConnectionNew, "New Connection"},
		{socket.ConnectionRead, "Read Incoming Stream"},
		{socket.ConnectionCloseRead, "Close Incoming Stream"},
		{socket.ConnectionHandler, "Run HandlerFunc"},
		{socket.ConnectionWrite, "Write Outgoing Steam"},
		{socket.ConnectionCloseWrite, "Close Outgoing Stream"},
		{socket.ConnectionClose, "Close Connection"},
		{socket.ConnState(255), "unknown connection state"},
	}

	for _, tc := range tests {
		t.Run(tc.exp, func(t *testing.T) {
			if got := tc.sta.String(); got != tc.exp {
				t.Errorf("ConnState(%d).String() = %q, want %q", tc.sta, got, tc.exp)
			}
		})
	}
}

func TestDefaultBufferSize(t *testing.T) {
	if socket.DefaultBufferSize != 32*1024 {
		t.Errorf("DefaultBufferSize = %d, want %d", socket.DefaultBufferSize, 32*1024)
	}
}

func TestEOL(t *testing.T) {
	if socket.EOL != '\n' {
		t.Errorf("EOL = %q, want %q", socket.EOL, '\n')
	}
}

func BenchmarkErrorFilter(b *testing.B) {
	err := fmt.Errorf("connection timeout")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = socket.ErrorFilter(err)
	}
}
