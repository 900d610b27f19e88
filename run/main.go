package run

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ridge/hellohttp/tlog"
	"github.com/ridge/must/v2"
	"github.com/ridge/parallel"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var fs = pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)

func init() {
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.String("log-format", string(tlog.FormatText), "Log format (json|text)")
	fs.String("log-color", "auto", "Colored logs (yes|no|auto)")
	fs.BoolP("verbose", "v", false, "Enable verbose (debug level) messages")
	// Usage is printed by the program's own command line parser
	fs.Usage = func() {}

	pflag.CommandLine.AddFlagSet(fs)
}

// Task is the top-level task of a program
type Task func(ctx context.Context) error

// Tool runs the top-level task of your program, watching for SIGINT.
//
// The context passed to the task carries a logger (see tlog.Get). When SIGINT
// arrives, "signal shutdown" is printed to standard output and the context
// is closed.
//
// Tool returns normally if the task returns nil. Otherwise it logs the error
// and exits with code 1, or the code chosen by an error implementing
// WithExitCode.
//
// Keep all the work inside the task: os.Exit skips deferred functions of the
// caller.
//
//	func main() {
//	    run.Tool(func(ctx context.Context) error {
//	        return step(ctx)
//	    })
//	}
func Tool(task Task) {
	if code := execute(rootContext(), task, handleSignals); code != 0 {
		os.Exit(code)
	}
}

// Server runs the top-level task of your program similar to Tool.
//
// If the task returns the context error after SIGINT closed the context, which
// is what a server that shut down gracefully does, the program exits with
// code 0.
func Server(task Task) {
	Tool(asServer(task))
}

func asServer(task Task) Task {
	return func(ctx context.Context) error {
		err := task(ctx)
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return nil
		}
		return err
	}
}

// WithExitCode is an optional interface that can be implemented by an error.
//
// When a (possibly wrapped) error implementing WithExitCode reaches the top
// level, the value returned by the ExitCode method becomes the exit code of the
// process. The default exit code for other errors is 1.
type WithExitCode interface {
	ExitCode() int
}

func execute(ctx context.Context, task Task, signals Task) int {
	err := parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("main", parallel.Exit, parallel.Task(task))
		spawn("signals", parallel.Exit, parallel.Task(signals))
		return nil
	})
	if err == nil {
		return 0
	}

	tlog.Get(ctx).Error("Error", zap.Error(err))
	var wec WithExitCode
	if errors.As(err, &wec) {
		return wec.ExitCode()
	}
	return 1
}

// cliConfig returns the logger Config derived from the command line
func cliConfig(args []string) (tlog.Config, error) {
	if err := fs.Parse(args); err != nil && !errors.Is(err, pflag.ErrHelp) {
		return tlog.Config{}, err
	}

	format, err := tlog.ParseFormat(must.OK1(fs.GetString("log-format")))
	if err != nil {
		return tlog.Config{}, err
	}
	color, err := tlog.ParseColor(must.OK1(fs.GetString("log-color")))
	if err != nil {
		return tlog.Config{}, err
	}

	return tlog.Config{
		Format:  format,
		Color:   color,
		Verbose: must.OK1(fs.GetBool("verbose")),
	}, nil
}

func rootContext() context.Context {
	config, err := cliConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return tlog.WithLogger(context.Background(), tlog.New(config))
}
