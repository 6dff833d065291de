package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/df07/go-octree-pathtracer/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger by sending messages to a console channel
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
	server      *log.Logger
}

// NewWebLogger creates a web logger for one render. Messages are also
// written to the server log when server is not nil.
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage, server *log.Logger) core.Logger {
	return &WebLogger{
		renderID:    renderID,
		consoleChan: consoleChan,
		server:      server,
	}
}

// Printf implements core.Logger
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	if wl.server != nil {
		wl.server.Info(strings.TrimRight(message, "\n"), "render", wl.renderID)
	}

	if wl.consoleChan != nil {
		select {
		case wl.consoleChan <- ConsoleMessage{
			Message:   message,
			Timestamp: time.Now(),
			Level:     "info",
		}:
		default:
			// Channel full, skip (don't block)
		}
	}
}
