package server

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/df07/go-octree-pathtracer/pkg/logging"
)

func TestWebLogger_BasicLogging(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger("test-render-123", messageChan, nil)

	testMessage := "Test log message"
	logger.Printf("%s\n", testMessage)

	select {
	case msg := <-messageChan:
		expectedMessage := testMessage + "\n"
		if msg.Message != expectedMessage {
			t.Errorf("Expected message '%s', got '%s'", expectedMessage, msg.Message)
		}
		if msg.Level != "info" {
			t.Errorf("Expected level 'info', got '%s'", msg.Level)
		}
		if time.Since(msg.Timestamp) > time.Second {
			t.Errorf("Timestamp seems too old: %v", msg.Timestamp)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for console message")
	}
}

func TestWebLogger_MultipleMessages(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger("test-render-456", messageChan, nil)

	messages := []string{"Message 1", "Message 2", "Message 3"}
	for _, msg := range messages {
		logger.Printf("%s", msg)
	}

	for i, expected := range messages {
		select {
		case msg := <-messageChan:
			if msg.Message != expected {
				t.Errorf("Message %d: expected '%s', got '%s'", i, expected, msg.Message)
			}
		case <-time.After(200 * time.Millisecond):
			t.Fatalf("Timeout waiting for message %d", i+1)
		}
	}
}

func TestWebLogger_ChannelFull(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 1)
	logger := NewWebLogger("test-render-789", messageChan, nil)

	// the second and third messages must be dropped, not block
	logger.Printf("Message 1")
	logger.Printf("Message 2")
	logger.Printf("Message 3")

	if len(messageChan) != 1 {
		t.Fatalf("Expected 1 queued message, got %d", len(messageChan))
	}
	if msg := <-messageChan; msg.Message != "Message 1" {
		t.Errorf("Expected the first message to be kept, got '%s'", msg.Message)
	}
}

func TestWebLogger_NilChannel(t *testing.T) {
	logger := NewWebLogger("test-render-nil", nil, nil)
	logger.Printf("Test message with nil channel\n")
}

func TestWebLogger_ForwardsToServerLog(t *testing.T) {
	var buf bytes.Buffer
	server := logging.NewWithWriter(&buf, "web", log.InfoLevel)
	logger := NewWebLogger("render-abc", nil, server)

	logger.Printf("Loading %s with %d triangles...\n", "dragon.obj", 12345)

	out := buf.String()
	if !strings.Contains(out, "Loading dragon.obj with 12345 triangles...") {
		t.Errorf("Expected the message in the server log, got %q", out)
	}
	if !strings.Contains(out, "render-abc") {
		t.Errorf("Expected the render ID in the server log, got %q", out)
	}
}
