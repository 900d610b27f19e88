package tlog

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format is the logging format
type Format string

// Format values
const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Color is the coloring setting for text format
type Color string

// Color values
const (
	ColorAuto Color = ""
	ColorYes  Color = "yes"
	ColorNo   Color = "no"
)

// ParseColor converts a --log-color argument into a Color
func ParseColor(s string) (Color, error) {
	switch s {
	case "", "auto":
		return ColorAuto, nil
	case "yes":
		return ColorYes, nil
	case "no":
		return ColorNo, nil
	}
	return "", &ErrInvalidSetting{Setting: "log-color", Value: s}
}

// ParseFormat converts a --log-format argument into a Format
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatText:
		return f, nil
	}
	return "", &ErrInvalidSetting{Setting: "log-format", Value: s}
}

// ErrInvalidSetting is returned for an unknown logging setting value
type ErrInvalidSetting struct {
	Setting string
	Value   string
}

func (e *ErrInvalidSetting) Error() string {
	return fmt.Sprintf("invalid --%s value %q", e.Setting, e.Value)
}

// Config is the configuration for creating a top-level logger
type Config struct {
	Name    string // top-level logger name (optional)
	Format  Format
	Color   Color
	Verbose bool // enable messages at Debug level
}

func iso8601MicroTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02T15:04:05.000000Z0700"))
}

// DefaultEncoderConfig is the zapcore.EncoderConfig shared by all top-level
// loggers. Text output only overrides level encoding.
var DefaultEncoderConfig = func() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = iso8601MicroTimeEncoder
	return ec
}()
