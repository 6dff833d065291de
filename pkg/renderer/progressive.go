package renderer

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/df07/go-octree-pathtracer/pkg/core"
	"github.com/df07/go-octree-pathtracer/pkg/material"
	"github.com/df07/go-octree-pathtracer/pkg/scene"
)

// EventKind distinguishes render events
type EventKind int

const (
	EventProgress EventKind = iota // Part of the image changed
	EventFinished                  // Every tile was rendered
	EventStopped                   // The render was stopped before all tiles were rendered
	EventFailed                    // A worker failed, Err is set
)

// String returns the event name used in logs and by the web server
func (k EventKind) String() string {
	switch k {
	case EventProgress:
		return "progress"
	case EventFinished:
		return "complete"
	case EventStopped:
		return "stopped"
	case EventFailed:
		return "error"
	}
	return "unknown"
}

// Event is a snapshot of a render. Image is a copy owned by the receiver.
type Event struct {
	Kind     EventKind
	RenderID uuid.UUID
	Image    *image.RGBA64
	Progress float64 // Fraction of tiles completed, 0..1
	Stats    Stats
	Err      error
}

// Final reports whether this is the last event of a render
func (e Event) Final() bool {
	return e.Kind != EventProgress
}

// eventBuffer is the capacity of the event channel. One slot is always
// left free for the final event.
const eventBuffer = 8

// render is the state of one TraceRays call. Everything except stopped is
// owned by the management goroutine.
type render struct {
	id          uuid.UUID
	opts        Options
	logger      core.Logger
	queue       []*Tile
	pool        *WorkerPool
	framebuffer *image.RGBA64
	stats       Stats
	events      chan Event
	err         error

	stopped  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	onDone   func()
}

func newRender(id uuid.UUID, s *scene.Scene, index core.TriangleStore, opts Options, logger core.Logger) *render {
	tiles := NewTileGrid(opts.Width, opts.Height, opts.TileWidth, opts.TileHeight)
	r := &render{
		id:          id,
		opts:        opts,
		logger:      logger,
		queue:       tiles,
		framebuffer: image.NewRGBA64(image.Rect(0, 0, opts.Width, opts.Height)),
		events:      make(chan Event, eventBuffer),
		stopCh:      make(chan struct{}),
	}

	base := material.Context{
		Store:       index,
		Materials:   s.Materials,
		Environment: s.Environment,
	}
	camera := NewCamera(s.Camera, opts.Width, opts.Height)
	r.pool = NewWorkerPool(min(opts.Workers, len(tiles)), opts.Seed, camera, base, opts, r.stopped.Load)

	r.stats = Stats{
		Width:      opts.Width,
		Height:     opts.Height,
		Workers:    r.pool.Size(),
		Samples:    opts.Samples,
		Triangles:  s.TriangleCount(),
		TilesTotal: len(tiles),
	}
	return r
}

// stop drops pending tiles and flags workers. Safe from any goroutine.
func (r *render) stop() {
	r.stopOnce.Do(func() {
		r.stopped.Store(true)
		close(r.stopCh)
	})
}

// manage is the management loop. It hands tiles to workers in grid order,
// composites their reports into the framebuffer and emits events. It ends
// when the queue is empty and every worker is idle.
func (r *render) manage(ctx context.Context) {
	start := time.Now()
	r.logger.Printf("Render %s: %dx%d, %d tiles of %dx%d, %d workers, %d samples, depth %d",
		r.id, r.opts.Width, r.opts.Height, len(r.queue), r.opts.TileWidth, r.opts.TileHeight,
		r.pool.Size(), r.opts.Samples, r.opts.RayDepth)

	r.pool.Start()
	idle := 0
	for w := 0; w < r.pool.Size(); w++ {
		if !r.dispatch(w) {
			idle++
		}
	}

	stopCh := r.stopCh
	done := ctx.Done()
	for idle < r.pool.Size() {
		select {
		case msg := <-r.pool.Messages():
			if !r.handle(msg) {
				continue
			}
			if !r.dispatch(msg.Worker) {
				idle++
			}
		case <-stopCh:
			stopCh = nil
			r.queue = nil
		case <-done:
			done = nil
			r.logger.Printf("Render %s: %v", r.id, ctx.Err())
			r.stop()
		}
	}
	r.pool.Wait()

	r.stats.Duration = time.Since(start)
	final := Event{
		Kind:     EventFinished,
		RenderID: r.id,
		Image:    r.snapshot(),
		Progress: r.progress(),
		Stats:    r.stats,
	}
	switch {
	case r.err != nil:
		final.Kind = EventFailed
		final.Err = r.err
		r.logger.Printf("Render %s failed after %v: %v", r.id, r.stats.Duration, r.err)
	case r.stats.TilesCompleted < r.stats.TilesTotal:
		final.Kind = EventStopped
		r.logger.Printf("Render %s stopped after %v: %d of %d tiles", r.id, r.stats.Duration, r.stats.TilesCompleted, r.stats.TilesTotal)
	default:
		r.logger.Printf("Render %s finished in %v (%.0f samples/s)", r.id, r.stats.Duration, r.stats.SamplesPerSecond())
	}

	if r.onDone != nil {
		r.onDone()
	}
	r.events <- final
	close(r.events)
}

// handle applies a worker message. It returns true when the worker is done
// with its tile and needs new work.
func (r *render) handle(msg workerMessage) bool {
	switch msg.Status {
	case tilePartial, tileDone:
		r.composite(msg.Pixels)
		r.stats.SamplesTraced += int64(msg.Samples)
		if msg.Status == tilePartial {
			r.publish()
			return false
		}
		r.stats.TilesCompleted++
		r.publish()
	case tileStopped:
		r.stats.TilesAbandoned++
	case tileFailed:
		if r.err == nil {
			r.err = msg.Err
		}
		r.stop()
	}
	return true
}

// dispatch hands the next queued tile to worker w, or retires it when
// there is nothing left to do. It returns false for a retired worker.
func (r *render) dispatch(w int) bool {
	if r.stopped.Load() {
		r.queue = nil
	}
	if len(r.queue) == 0 {
		r.pool.Retire(w)
		return false
	}
	tile := r.queue[0]
	r.queue = r.queue[1:]
	r.stats.TilesDispatched++
	r.pool.Assign(w, tile)
	return true
}

// composite draws finished rows into the framebuffer
func (r *render) composite(pixels *image.RGBA64) {
	if pixels == nil {
		return
	}
	draw.Draw(r.framebuffer, pixels.Bounds(), pixels, pixels.Bounds().Min, draw.Src)
}

// publish sends a progress event unless the consumer is behind
func (r *render) publish() {
	if len(r.events) >= cap(r.events)-1 {
		return
	}
	r.events <- Event{
		Kind:     EventProgress,
		RenderID: r.id,
		Image:    r.snapshot(),
		Progress: r.progress(),
		Stats:    r.stats,
	}
}

func (r *render) progress() float64 {
	if r.stats.TilesTotal == 0 {
		return 1
	}
	return float64(r.stats.TilesCompleted) / float64(r.stats.TilesTotal)
}

// snapshot copies the framebuffer
func (r *render) snapshot() *image.RGBA64 {
	img := image.NewRGBA64(r.framebuffer.Bounds())
	copy(img.Pix, r.framebuffer.Pix)
	return img
}
