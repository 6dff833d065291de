package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli"

	"github.com/df07/go-octree-pathtracer/pkg/loaders"
	"github.com/df07/go-octree-pathtracer/pkg/renderer"
	"github.com/df07/go-octree-pathtracer/pkg/scene"
)

// Used when neither a flag nor the scene file sets the image size
const (
	defaultWidth  = 400
	defaultHeight = 300
)

func renderFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{Name: "width", Value: defaultWidth, Usage: "image width"},
		cli.IntFlag{Name: "height", Value: defaultHeight, Usage: "image height"},
		cli.IntFlag{Name: "samples, s", Value: 4, Usage: "camera rays per pixel"},
		cli.IntFlag{Name: "depth", Value: renderer.DefaultRayDepth, Usage: "shading depth budget per camera ray"},
		cli.IntFlag{Name: "tile", Value: renderer.DefaultTileSize, Usage: "tile edge length in pixels"},
		cli.IntFlag{Name: "workers, w", Usage: "worker count, 0 uses every CPU"},
		cli.Uint64Flag{Name: "seed", Usage: "random seed of the first worker"},
		cli.StringFlag{Name: "out, o", Usage: "output image, defaults to output/<scene>.png"},
		cli.BoolFlag{Name: "watch", Usage: "render again whenever the scene directory changes"},
		scenesFlag,
	}
}

// flagValues is the part of *cli.Context the option resolution reads
type flagValues interface {
	IsSet(name string) bool
	Int(name string) int
	Uint64(name string) uint64
}

// renderOptions combines the scene file's render settings with the flags.
// A flag given on the command line wins over the file, and the file wins
// over flag defaults.
func renderOptions(flags flagValues, desc *scene.Description) renderer.Options {
	var file scene.RenderSettings
	if desc != nil {
		file = desc.Render
	}
	pick := func(name string, fromFile int) int {
		if flags.IsSet(name) || fromFile == 0 {
			return flags.Int(name)
		}
		return fromFile
	}

	tile := flags.Int("tile")
	return renderer.Options{
		Width:      pick("width", file.Width),
		Height:     pick("height", file.Height),
		Samples:    pick("samples", file.Samples),
		RayDepth:   pick("depth", file.Depth),
		TileWidth:  tile,
		TileHeight: tile,
		Workers:    flags.Int("workers"),
		Seed:       flags.Uint64("seed"),
	}
}

// outputPath names the image written for a scene ID when --out is not given
func outputPath(sceneID string) string {
	name := strings.TrimPrefix(sceneID, "file:")
	name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return filepath.Join("output", name+".png")
}

// sceneFile returns the scene file behind an ID, or "" for built-in scenes
func sceneFile(sceneID, dir string) string {
	if _, ok := scene.Builtin(sceneID); ok {
		return ""
	}
	if name, ok := strings.CutPrefix(sceneID, "file:"); ok {
		return filepath.Join(dir, name+".toml")
	}
	return sceneID
}

func renderCommand(c *cli.Context) error {
	logger := setupLogging(c)

	sceneID := c.Args().First()
	if sceneID == "" {
		sceneID = "default"
	}
	out := c.String("out")
	if out == "" {
		out = outputPath(sceneID)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	render := func() error {
		desc, s, err := scene.Load(sceneID, c.String("scenes"), logger)
		if err != nil {
			return err
		}
		stats, err := renderToFile(ctx, s, renderOptions(c, desc), out, logger)
		if err != nil {
			return err
		}
		stats.WriteTable(c.App.Writer)
		return nil
	}

	if err := render(); err != nil {
		if !c.Bool("watch") {
			return err
		}
		logger.Error("Render failed", "err", err)
	}

	if !c.Bool("watch") {
		return nil
	}
	path := sceneFile(sceneID, c.String("scenes"))
	if path == "" {
		return errors.New("--watch needs a scene file, not a built-in scene")
	}
	return watchScene(ctx, path, logger, render)
}

// renderToFile renders s and writes the final image to out. A stopped
// render is still written.
func renderToFile(ctx context.Context, s *scene.Scene, opts renderer.Options, out string, logger *log.Logger) (renderer.Stats, error) {
	final, err := renderScene(ctx, s, opts, logger)
	if err != nil {
		return final.Stats, err
	}

	if dir := filepath.Dir(out); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return final.Stats, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := loaders.SaveImage(out, final.Image); err != nil {
		return final.Stats, err
	}
	logger.Info("Render saved", "file", out, "status", final.Kind, "duration", final.Stats.Duration)
	return final.Stats, nil
}

// renderScene runs one render to its end and returns the final event
func renderScene(ctx context.Context, s *scene.Scene, opts renderer.Options, logger *log.Logger) (renderer.Event, error) {
	tracer := renderer.NewPathTracer(s, logger)
	events, err := tracer.TraceRays(ctx, opts)
	if err != nil {
		return renderer.Event{}, err
	}

	var final renderer.Event
	for ev := range events {
		if ev.Final() {
			final = ev
			continue
		}
		logger.Debug("Render progress", "done", fmt.Sprintf("%.0f%%", ev.Progress*100))
	}
	if final.Kind == renderer.EventFailed {
		return final, final.Err
	}
	return final, nil
}
