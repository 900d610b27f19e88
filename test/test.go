// Package test contains helpers shared by the unit tests of this module.
package test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ridge/hellohttp/tlog"
	"github.com/ridge/parallel"
	"github.com/stretchr/testify/require"
)

// Context returns a context carrying a test logger, the same way run.Tool
// provides one to real programs
func Context(t *testing.T) context.Context {
	return tlog.WithLogger(context.Background(), tlog.NewForTesting(t))
}

// ContextWithTimeout is a version of Context which is closed with
// context.DeadlineExceeded after timeout
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(Context(t), timeout)
	t.Cleanup(cancel)
	return ctx
}

// Group returns a parallel.Group running in a test context.
//
// The group is shut down on test cleanup. If it finishes with an error other
// than context.Canceled, the test fails.
func Group(t *testing.T) *parallel.Group {
	return newGroup(t, Context(t))
}

// GroupWithTimeout is a version of Group with a timeout
func GroupWithTimeout(t *testing.T, timeout time.Duration) *parallel.Group {
	return newGroup(t, ContextWithTimeout(t, timeout))
}

func newGroup(t *testing.T, ctx context.Context) *parallel.Group {
	group := parallel.NewGroup(ctx)
	t.Cleanup(func() {
		group.Exit(nil)
		if err := group.Wait(); !errors.Is(err, context.Canceled) {
			require.NoError(t, err)
		}
	})
	return group
}
