package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a leveled logger writing to stderr with caller and timestamp
// reporting. The returned logger satisfies core.Logger.
func New(prefix string, level log.Level) *log.Logger {
	return NewWithWriter(os.Stderr, prefix, level)
}

// NewWithWriter creates a logger writing to w
func NewWithWriter(w io.Writer, prefix string, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          prefix,
	})
	l.SetLevel(level)
	return l
}

// ParseLevel maps a level name to a log level. Unknown names yield info
// and an error.
func ParseLevel(name string) (log.Level, error) {
	level, err := log.ParseLevel(name)
	if err != nil {
		return log.InfoLevel, err
	}
	return level, nil
}
