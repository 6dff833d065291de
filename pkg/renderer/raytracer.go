package renderer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/df07/go-octree-pathtracer/pkg/core"
	"github.com/df07/go-octree-pathtracer/pkg/scene"
)

var (
	// ErrBusy is returned when a render is requested while another is running
	ErrBusy = errors.New("renderer: a render is already in progress")
	// ErrInvalidOptions is returned for render options that cannot be used
	ErrInvalidOptions = errors.New("renderer: invalid options")
	// ErrWorkerFailed is reported when a worker aborts a render
	ErrWorkerFailed = errors.New("renderer: worker failed")
	// ErrNoScene is returned when rendering without a scene
	ErrNoScene = errors.New("renderer: no scene")
)

// Defaults for render options left at zero
const (
	DefaultRayDepth       = 16
	DefaultTileSize       = 32
	DefaultSamples        = 1
	DefaultReportInterval = 2 * time.Second
)

// Options configures a single render
type Options struct {
	Width          int
	Height         int
	RayDepth       int           // Shading depth budget per camera ray (default 16)
	TileWidth      int           // default 32
	TileHeight     int           // default 32
	Workers        int           // Parallel workers (default: logical CPUs)
	Samples        int           // Camera rays per pixel (default 1)
	Seed           uint64        // Worker i draws from Seed+i
	ReportInterval time.Duration // Longest a worker renders without reporting (default 2s)
}

// DefaultOptions returns the default options for an image size
func DefaultOptions(width, height int) Options {
	return Options{Width: width, Height: height}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.RayDepth == 0 {
		o.RayDepth = DefaultRayDepth
	}
	if o.TileWidth == 0 {
		o.TileWidth = DefaultTileSize
	}
	if o.TileHeight == 0 {
		o.TileHeight = DefaultTileSize
	}
	if o.Workers == 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Samples == 0 {
		o.Samples = DefaultSamples
	}
	if o.ReportInterval == 0 {
		o.ReportInterval = DefaultReportInterval
	}
	return o
}

// Validate checks the options after defaults are applied
func (o Options) Validate() error {
	o = o.withDefaults()
	switch {
	case o.Width <= 0 || o.Height <= 0:
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidOptions, o.Width, o.Height)
	case o.RayDepth < 0:
		return fmt.Errorf("%w: ray depth %d", ErrInvalidOptions, o.RayDepth)
	case o.TileWidth < 0 || o.TileHeight < 0:
		return fmt.Errorf("%w: tile size %dx%d", ErrInvalidOptions, o.TileWidth, o.TileHeight)
	case o.Workers < 0:
		return fmt.Errorf("%w: %d workers", ErrInvalidOptions, o.Workers)
	case o.Samples < 0:
		return fmt.Errorf("%w: %d samples", ErrInvalidOptions, o.Samples)
	case o.ReportInterval < 0:
		return fmt.Errorf("%w: report interval %v", ErrInvalidOptions, o.ReportInterval)
	}
	return nil
}

// PathTracer renders a scene with a pool of tile workers. It runs one render
// at a time. The spatial index is built on the first render after the scene
// is set and reused until the scene changes.
type PathTracer struct {
	mu     sync.Mutex
	scene  *scene.Scene
	index  *core.Octree
	logger core.Logger
	active *render
}

// NewPathTracer creates a path tracer for s. A nil logger discards output.
func NewPathTracer(s *scene.Scene, logger core.Logger) *PathTracer {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &PathTracer{scene: s, logger: logger}
}

// Scene returns the scene being rendered
func (pt *PathTracer) Scene() *scene.Scene {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return pt.scene
}

// SetScene replaces the scene and drops the index. Geometry edits made to
// the current scene in place also need SetScene to be seen by the index.
func (pt *PathTracer) SetScene(s *scene.Scene) error {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if pt.active != nil {
		return ErrBusy
	}
	pt.scene = s
	pt.index = nil
	return nil
}

// Busy reports whether a render is running
func (pt *PathTracer) Busy() bool {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return pt.active != nil
}

// TraceRays starts a render and returns its event stream. Progress events
// may be dropped when the consumer falls behind. Exactly one final event
// (finished, stopped or failed) is delivered, after which the channel is
// closed. Cancelling ctx stops the render like Stop.
func (pt *PathTracer) TraceRays(ctx context.Context, opts Options) (<-chan Event, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	pt.mu.Lock()
	defer pt.mu.Unlock()
	if pt.active != nil {
		return nil, ErrBusy
	}
	if pt.scene == nil {
		return nil, ErrNoScene
	}
	if err := pt.scene.Camera.Validate(); err != nil {
		return nil, err
	}

	var indexTime time.Duration
	if pt.index == nil {
		start := time.Now()
		pt.index = core.NewOctree(pt.scene.Triangles(), core.OctreeOptions{Seed: opts.Seed, Logger: pt.logger})
		indexTime = time.Since(start)
	}

	r := newRender(uuid.New(), pt.scene, pt.index, opts, pt.logger)
	r.stats.IndexTime = indexTime
	r.onDone = func() {
		pt.mu.Lock()
		pt.active = nil
		pt.mu.Unlock()
	}
	pt.active = r

	go r.manage(ctx)
	return r.events, nil
}

// Stop asks the running render to end. Pending tiles are dropped and
// workers abandon their tile after the current scanline. Stop returns
// immediately; the stopped event follows once every worker is idle.
func (pt *PathTracer) Stop() {
	pt.mu.Lock()
	r := pt.active
	pt.mu.Unlock()
	if r != nil {
		r.stop()
	}
}
