package main

import (
	"flag"
	"os"

	"github.com/df07/go-octree-pathtracer/pkg/logging"
	"github.com/df07/go-octree-pathtracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	scenes := flag.String("scenes", "scenes", "Directory with scene files")
	level := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	lvl, err := logging.ParseLevel(*level)
	logger := logging.New("web", lvl)
	if err != nil {
		logger.Warn("Unknown log level, using info", "level", *level)
	}

	logger.Info("Octree Path Tracer Web Server")
	logger.Infof("Visit http://localhost:%d to start rendering", *port)

	if err := server.NewServer(*port, *scenes, logger).Start(); err != nil {
		logger.Error("Error starting server", "err", err)
		os.Exit(1)
	}
}
