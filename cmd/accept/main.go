// Command accept is the bare TCP example: it accepts connections on port 3000
// and prints a line for each one, without speaking HTTP at all
package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"github.com/ridge/hellohttp/run"
	"github.com/ridge/hellohttp/tlog"
	"github.com/ridge/hellohttp/tnet"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const addr = "tcp4:127.0.0.1:3000"

func main() {
	pflag.Parse()
	run.Server(func(ctx context.Context) error {
		listener, err := tnet.Listen(addr)
		if err != nil {
			return err
		}
		return tnet.AcceptLoop(ctx, listener, processSocket(os.Stdout))
	})
}

func processSocket(out io.Writer) tnet.ConnHandler {
	var mu sync.Mutex
	return func(ctx context.Context, conn net.Conn) {
		mu.Lock()
		defer mu.Unlock()
		if _, err := fmt.Fprintln(out, "process socket"); err != nil {
			tlog.Get(ctx).Warn("Failed to write", zap.Error(err))
		}
	}
}
