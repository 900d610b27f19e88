package tnet

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/ridge/hellohttp/test"
	"github.com/stretchr/testify/require"
)

func TestAcceptLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(test.Context(t))
	defer cancel()

	l := ListenOnRandomPort()
	accepted := make(chan string, 2)
	release := make(chan struct{})
	loopErr := make(chan error, 1)
	go func() {
		loopErr <- AcceptLoop(ctx, l, func(ctx context.Context, conn net.Conn) {
			accepted <- conn.RemoteAddr().String()
			<-release
		})
	}()

	// Two clients are served concurrently: the first one doesn't block the second
	c1, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer c1.Close()
	c2, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer c2.Close()

	got := map[string]bool{<-accepted: true, <-accepted: true}
	require.True(t, got[c1.LocalAddr().String()])
	require.True(t, got[c2.LocalAddr().String()])

	cancel()
	select {
	case <-loopErr:
		require.Fail(t, "AcceptLoop returned before handlers finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.ErrorIs(t, <-loopErr, context.Canceled)

	_, err = net.Dial("tcp", l.Addr().String())
	require.Error(t, err)
}

func TestAcceptLoopClosesConnection(t *testing.T) {
	ctx, cancel := context.WithCancel(test.Context(t))
	defer cancel()

	l := ListenOnRandomPort()
	go func() {
		_ = AcceptLoop(ctx, l, func(ctx context.Context, conn net.Conn) {})
	}()

	c, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, err = c.Read(make([]byte, 1))
	require.ErrorIs(t, err, io.EOF)
}
