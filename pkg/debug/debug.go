// Package debug holds the zerolog hooks and console setup shared by the
// embedls commands.
package debug

import (
	"fmt"
	"io"
	"path"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// DefaultTimeFormat has millisecond precision and no zone.
const DefaultTimeFormat = "2006-01-02T15:04:05.000Z"

// eventSkipFrames reads the unexported skipFrame field of e so the caller
// hook reports the frame the event was sent from.
func eventSkipFrames(e *zerolog.Event) int {
	v := reflect.ValueOf(e).Elem()
	field := v.FieldByName("skipFrame")
	if field.IsValid() && field.Kind() == reflect.Int {
		return int(field.Int())
	}
	return 0
}

type TimeHook struct {
	Format string
	// Now defaults to time.Now.
	Now func() time.Time
}

func (h TimeHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	format := h.Format
	if format == "" {
		format = DefaultTimeFormat
	}
	e.Str(zerolog.TimestampFieldName, now().UTC().Format(format))
}

type CallerHook struct {
	WithColor bool
}

func (h CallerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	pc, file, line, ok := runtime.Caller(eventSkipFrames(e) + 3)
	if !ok {
		return
	}
	pkg := ""
	if fn := runtime.FuncForPC(pc); fn != nil {
		pkg, _ = SplitFuncName(fn.Name())
	}
	e.Str(zerolog.CallerFieldName, FormatCaller(pkg, file, line, h.WithColor))
}

// SplitFuncName splits a runtime function name such as
// "github.com/walteh/embedls/pkg/langsvc.(*Decorator).Rename" into its
// package path and the function part, receiver included.
func SplitFuncName(name string) (pkg, function string) {
	lastSlash := strings.LastIndexByte(name, '/')
	if lastSlash < 0 {
		lastSlash = 0
	}
	dot := strings.IndexByte(name[lastSlash:], '.')
	if dot < 0 {
		return name, ""
	}
	dot += lastSlash
	pkg, function = name[:dot], name[dot+1:]

	if before, after, ok := strings.Cut(pkg, ".("); ok {
		pkg = before
		function = "(" + after + "." + function
	}
	return pkg, function
}

func FormatCaller(pkg, file string, line int, colorize bool) string {
	base := path.Base(file)
	if !colorize {
		return fmt.Sprintf("%s:%s:%d", pkg, base, line)
	}
	sep := color.New(color.Faint).Sprint(":")
	return pkg + sep + color.New(color.Bold).Sprint(base) + sep + color.New(color.FgHiRed, color.Bold).Sprintf("%d", line)
}

// NewLogger builds the console logger used by the command line: human
// readable output on w with the time and caller hooks installed.
func NewLogger(w io.Writer, level zerolog.Level, colorize bool) zerolog.Logger {
	console := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !colorize,
		TimeFormat: DefaultTimeFormat,
	}
	return zerolog.New(console).
		Level(level).
		Hook(TimeHook{}).
		Hook(CallerHook{WithColor: colorize})
}
