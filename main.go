package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli"

	"github.com/df07/go-octree-pathtracer/pkg/logging"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Error("Command failed", "err", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "octree-pathtracer"
	app.Usage = "render triangle scenes with an octree path tracer"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "log level (debug, info, warn, error)",
		},
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable debug logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a scene to an image file",
			Description: `
Render a built-in scene (default, cornell-box, glass), a scene ID from the
scenes directory (file:<name>) or the path to a scene file. Flags override
the render settings stored in the scene file.`,
			ArgsUsage: "[scene]",
			Flags:     renderFlags(),
			Action:    renderCommand,
		},
		{
			Name:  "serve",
			Usage: "start the web server",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "port",
					Value: 8080,
					Usage: "port to serve on",
				},
				scenesFlag,
			},
			Action: serveCommand,
		},
		{
			Name:  "materials",
			Usage: "inspect material libraries",
			Subcommands: []cli.Command{
				{
					Name:      "list",
					Usage:     "list the materials of a library",
					ArgsUsage: "library.toml",
					Action:    listMaterialsCommand,
				},
				{
					Name:      "format",
					Usage:     "rewrite a library in canonical form, assigning missing UUIDs",
					ArgsUsage: "library.toml",
					Action:    formatMaterialsCommand,
				},
			},
		},
		{
			Name:      "export",
			Usage:     "write a scene's geometry as Wavefront OBJ",
			ArgsUsage: "[scene]",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Value: "scene.obj",
					Usage: "OBJ output file",
				},
				cli.StringFlag{
					Name:  "materials, m",
					Usage: "also write the scene's material library to this TOML file",
				},
				cli.BoolFlag{
					Name:  "camera-space",
					Usage: "write coordinates relative to the camera instead of the world",
				},
				scenesFlag,
			},
			Action: exportCommand,
		},
	}
	return app
}

var scenesFlag = cli.StringFlag{
	Name:  "scenes",
	Value: "scenes",
	Usage: "directory with scene files",
}

// setupLogging creates the command logger from the global flags
func setupLogging(ctx *cli.Context) *log.Logger {
	level, err := logging.ParseLevel(ctx.GlobalString("log-level"))
	if ctx.GlobalBool("v") {
		level = log.DebugLevel
	}
	logger := logging.New("pathtracer", level)
	if err != nil {
		logger.Warn("Unknown log level, using info", "level", ctx.GlobalString("log-level"))
	}
	return logger
}
