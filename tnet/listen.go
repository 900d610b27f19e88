package tnet

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/ridge/must/v2"
)

var lc = net.ListenConfig{
	KeepAlive: 3 * time.Minute,
}

// Listen installs a listener on the specified address.
//
// If the address string starts with "tcp:", the rest is interpreted as
// [address]:port on which to open a TCP listening socket. TCP keep-alive is
// enabled in this case.
//
// "tcp4:" works the same way but restricts the socket to IPv4, so that
// "tcp4:0.0.0.0:port" doesn't become a dual-stack wildcard.
//
// If the address string starts with "unix:", the rest is interpreted the path
// to a UNIX domain socket to listen on.
//
// If neither prefix is present, "tcp:" is assumed.
//
// Failures (port in use, permission denied) are returned as ErrBind.
func Listen(address string) (net.Listener, error) {
	network := "tcp"
	if proto, rest, ok := strings.Cut(address, ":"); ok {
		switch proto {
		case "unix", "tcp4":
			network = proto
			address = rest
		case "tcp":
			address = rest
		}
	}
	l, err := lc.Listen(context.Background(), network, address)
	if err != nil {
		return nil, ErrBind{Address: address, Err: err}
	}
	return l, nil
}

// ListenOnRandomPort selects a random local TCP port and installs a listener on
// it with TCP keep-alive enabled
func ListenOnRandomPort() net.Listener {
	return must.OK1(Listen("localhost:"))
}

// ErrBind is returned by Listen when the socket can't be bound
type ErrBind struct {
	Address string
	Err     error
}

func (e ErrBind) Error() string {
	return fmt.Sprintf("failed to listen on %s: %v", e.Address, e.Err)
}

func (e ErrBind) Unwrap() error {
	return e.Err
}
