package anvil

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Logger carries the diagnostics from the lenient decode paths: corrupt
// section payloads and column coordinate mismatches are reported here rather
// than failing the decode.
type Logger struct {
	Out   io.Writer
	Debug bool
}

// Log receives all diagnostics. Replace Out (or set it to io.Discard) to
// redirect or silence them.
var Log = &Logger{Out: os.Stderr}

var (
	warnTag  = color.New(color.FgYellow, color.Bold).SprintFunc()
	debugTag = color.New(color.FgCyan, color.Bold).SprintFunc()
)

func (l *Logger) Warnf(format string, args ...interface{}) {
	if l == nil || l.Out == nil {
		return
	}
	fmt.Fprintln(l.Out, warnTag("WARN"), fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	if l == nil || l.Out == nil || !l.Debug {
		return
	}
	fmt.Fprintln(l.Out, debugTag("DEBUG"), fmt.Sprintf(format, args...))
}
