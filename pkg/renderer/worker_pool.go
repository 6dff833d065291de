package renderer

import (
	"fmt"
	"image"
	"sync"

	"golang.org/x/exp/rand"

	"github.com/df07/go-octree-pathtracer/pkg/material"
)

// tileStatus says what a worker message means for its tile
type tileStatus int

const (
	tilePartial  tileStatus = iota // Rows finished, tile still in progress
	tileDone                       // Last rows of the tile
	tileStopped                    // Tile abandoned after a stop
	tileFailed                     // Worker panicked, Err is set
)

// workerMessage is everything a worker tells the management loop
type workerMessage struct {
	Worker  int
	Tile    *Tile
	Status  tileStatus
	Pixels  *image.RGBA64 // Rows to composite, nil when stopped or failed
	Samples int           // Camera samples traced for Pixels
	Err     error
}

// worker renders the tiles it is handed, one at a time, with its own
// random source
type worker struct {
	id       int
	assign   chan *Tile
	messages chan<- workerMessage
	stopped  func() bool
	renderer tileRenderer
}

// WorkerPool is a fixed set of tile workers. Each worker holds at most one
// assigned tile, and the owner hands out the next one when a worker
// reports its tile finished or abandoned.
type WorkerPool struct {
	workers  []*worker
	messages chan workerMessage
	wg       sync.WaitGroup
}

// NewWorkerPool creates count workers sharing the scene in base. Worker i
// draws random numbers from a generator seeded with seed+i.
func NewWorkerPool(count int, seed uint64, camera *Camera, base material.Context, opts Options, stopped func() bool) *WorkerPool {
	wp := &WorkerPool{messages: make(chan workerMessage, count)}
	for i := 0; i < count; i++ {
		shading := base
		shading.Random = rand.New(rand.NewSource(seed + uint64(i)))
		wp.workers = append(wp.workers, &worker{
			id:       i,
			assign:   make(chan *Tile, 1),
			messages: wp.messages,
			stopped:  stopped,
			renderer: tileRenderer{
				camera:   camera,
				shading:  &shading,
				depth:    opts.RayDepth,
				samples:  opts.Samples,
				interval: opts.ReportInterval,
			},
		})
	}
	return wp
}

// Start runs every worker in its own goroutine
func (wp *WorkerPool) Start() {
	for _, w := range wp.workers {
		wp.wg.Add(1)
		go w.run(&wp.wg)
	}
}

// Assign hands a tile to an idle worker. It never blocks.
func (wp *WorkerPool) Assign(worker int, tile *Tile) {
	wp.workers[worker].assign <- tile
}

// Retire tells an idle worker there is no more work
func (wp *WorkerPool) Retire(worker int) {
	close(wp.workers[worker].assign)
}

// Messages returns the stream of worker reports
func (wp *WorkerPool) Messages() <-chan workerMessage {
	return wp.messages
}

// Wait blocks until every retired worker has exited
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Size returns the number of workers in the pool
func (wp *WorkerPool) Size() int {
	return len(wp.workers)
}

// run is the main worker loop
func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for tile := range w.assign {
		if !w.renderTile(tile) {
			return
		}
	}
}

// renderTile renders one tile and reports its outcome. A panic inside the
// shaders is reported as a failure and ends the worker.
func (w *worker) renderTile(tile *Tile) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			w.messages <- workerMessage{
				Worker: w.id,
				Tile:   tile,
				Status: tileFailed,
				Err:    fmt.Errorf("%w: worker %d, tile %d: %v", ErrWorkerFailed, w.id, tile.ID, r),
			}
			ok = false
		}
	}()

	report := func(pixels *image.RGBA64, samples int, done bool) {
		status := tilePartial
		if done {
			status = tileDone
		}
		w.messages <- workerMessage{Worker: w.id, Tile: tile, Status: status, Pixels: pixels, Samples: samples}
	}

	if !w.renderer.renderTile(tile, w.stopped, report) {
		w.messages <- workerMessage{Worker: w.id, Tile: tile, Status: tileStopped}
	}
	return true
}
