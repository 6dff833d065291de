package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/df07/go-octree-pathtracer/pkg/core"
	"github.com/df07/go-octree-pathtracer/pkg/renderer"
	"github.com/df07/go-octree-pathtracer/pkg/scene"
)

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene   string `json:"scene"`   // Scene ID from /api/scenes
	Width   int    `json:"width"`   // Image width
	Height  int    `json:"height"`  // Image height
	Samples int    `json:"samples"` // Rays per pixel
	Depth   int    `json:"depth"`   // Shading depth budget
	Seed    uint64 `json:"seed"`    // Seed of the first worker
}

// ProgressUpdate is the payload of progress and final SSE events
type ProgressUpdate struct {
	RenderID  string      `json:"renderId"`
	Progress  float64     `json:"progress"`  // Completed share of tiles in [0,1]
	ImageData string      `json:"imageData"` // Base64 encoded PNG
	Stats     RenderStats `json:"stats"`
	ElapsedMs int64       `json:"elapsedMs"`
	Error     string      `json:"error,omitempty"`
}

// RenderStats represents render statistics
type RenderStats struct {
	Triangles        int     `json:"triangles"`
	Workers          int     `json:"workers"`
	TilesTotal       int     `json:"tilesTotal"`
	TilesCompleted   int     `json:"tilesCompleted"`
	SamplesTraced    int64   `json:"samplesTraced"`
	SamplesPerSecond float64 `json:"samplesPerSecond"`
	IndexMs          int64   `json:"indexMs"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "progress", "complete", "stopped", "error"
	Data string `json:"data"` // JSON-encoded data
}

// handleRender renders a scene and streams progress via SSE. A client
// disconnect stops the render.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)

	ctx := r.Context()
	sseEventChan := make(chan SSEEvent, 100)

	// single writer; it must be done before the handler returns
	var writer sync.WaitGroup
	writer.Add(1)
	go func() {
		defer writer.Done()
		s.writeSSEEvents(ctx, w, sseEventChan)
	}()
	defer func() {
		close(sseEventChan)
		writer.Wait()
	}()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	renderID := uuid.New()
	consoleChan, webLogger := s.setupConsoleLogging(renderID)

	_, sceneObj, err := scene.Load(req.Scene, s.scenesDir, webLogger)
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	opts := renderer.DefaultOptions(req.Width, req.Height)
	opts.Samples = req.Samples
	opts.RayDepth = req.Depth
	opts.Seed = req.Seed

	tracer := renderer.NewPathTracer(sceneObj, webLogger)
	events, err := tracer.TraceRays(ctx, opts)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Render failed: %v", err))
		return
	}

	s.handleRenderingEvents(ctx, sseEventChan, events, consoleChan, time.Now())
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging(renderID uuid.UUID) (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	return consoleChan, NewWebLogger(renderID.String(), consoleChan, s.logger)
}

// writeSSEEvents writes all SSE events from one goroutine until the
// channel is closed or the client goes away
func (s *Server) writeSSEEvents(ctx context.Context, w http.ResponseWriter, sseEventChan <-chan SSEEvent) {
	flusher, _ := w.(http.Flusher)
	disconnected := false
	for event := range sseEventChan {
		if disconnected {
			continue
		}
		if ctx.Err() != nil {
			disconnected = true
			continue
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			disconnected = true
			continue
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// handleRenderingEvents forwards render events and console messages until
// the render has ended
func (s *Server) handleRenderingEvents(ctx context.Context, sseEventChan chan<- SSEEvent,
	events <-chan renderer.Event, consoleChan <-chan ConsoleMessage, startTime time.Time) {

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				s.drainConsole(ctx, sseEventChan, consoleChan)
				return
			}
			if ev.Final() {
				// console lines logged before the end go first
				s.drainConsole(ctx, sseEventChan, consoleChan)
			}
			s.handleRenderEvent(ctx, sseEventChan, ev, startTime)

		case msg := <-consoleChan:
			s.sendConsole(ctx, sseEventChan, msg)
		}
	}
}

// handleRenderEvent encodes one render event
func (s *Server) handleRenderEvent(ctx context.Context, sseEventChan chan<- SSEEvent, ev renderer.Event, startTime time.Time) {
	if ctx.Err() != nil {
		return
	}

	update := ProgressUpdate{
		RenderID:  ev.RenderID.String(),
		Progress:  ev.Progress,
		Stats:     renderStats(ev.Stats),
		ElapsedMs: time.Since(startTime).Milliseconds(),
	}
	if ev.Err != nil {
		update.Error = ev.Err.Error()
	}
	if ev.Image != nil {
		imageData, err := imageToBase64PNG(ev.Image)
		if err != nil {
			s.logger.Error("Error encoding render image", "render", update.RenderID, "err", err)
			return
		}
		update.ImageData = imageData
	}

	data, err := json.Marshal(update)
	if err != nil {
		s.logger.Error("Error marshaling render update", "err", err)
		return
	}
	send(ctx, sseEventChan, SSEEvent{Type: ev.Kind.String(), Data: string(data)})
}

func renderStats(stats renderer.Stats) RenderStats {
	return RenderStats{
		Triangles:        stats.Triangles,
		Workers:          stats.Workers,
		TilesTotal:       stats.TilesTotal,
		TilesCompleted:   stats.TilesCompleted,
		SamplesTraced:    stats.SamplesTraced,
		SamplesPerSecond: stats.SamplesPerSecond(),
		IndexMs:          stats.IndexTime.Milliseconds(),
	}
}

func (s *Server) sendConsole(ctx context.Context, sseEventChan chan<- SSEEvent, msg ConsoleMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("Error marshaling console message", "err", err)
		return
	}
	send(ctx, sseEventChan, SSEEvent{Type: "console", Data: string(data)})
}

// drainConsole forwards the console messages queued so far
func (s *Server) drainConsole(ctx context.Context, sseEventChan chan<- SSEEvent, consoleChan <-chan ConsoleMessage) {
	for {
		select {
		case msg := <-consoleChan:
			s.sendConsole(ctx, sseEventChan, msg)
		default:
			return
		}
	}
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene")}
	if req.Scene == "" {
		req.Scene = "cornell-box"
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 400, 1, 4000); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", 400, 1, 4000); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(query, "samples", 4, 1, 10000); err != nil {
		return nil, err
	}
	if req.Depth, err = parseIntParam(query, "depth", renderer.DefaultRayDepth, 1, 1000); err != nil {
		return nil, err
	}
	if req.Seed, err = parseUintParam(query, "seed", 0); err != nil {
		return nil, err
	}

	if req.Width*req.Height > 800*600 && req.Samples > 100 {
		s.logger.Warn("Large image with high samples may render slowly", "width", req.Width, "height", req.Height, "samples", req.Samples)
	}
	return req, nil
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan<- SSEEvent, message string) {
	data, _ := json.Marshal(ProgressUpdate{Error: message})
	send(ctx, sseEventChan, SSEEvent{Type: renderer.EventFailed.String(), Data: string(data)})
}

// send queues an event unless the client has gone away
func send(ctx context.Context, sseEventChan chan<- SSEEvent, event SSEEvent) {
	select {
	case sseEventChan <- event:
	case <-ctx.Done():
	}
}
