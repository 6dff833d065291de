package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/df07/go-octree-pathtracer/pkg/loaders"
	"github.com/df07/go-octree-pathtracer/pkg/material"
	"github.com/df07/go-octree-pathtracer/pkg/scene"
	"github.com/df07/go-octree-pathtracer/web/server"
)

func serveCommand(c *cli.Context) error {
	logger := setupLogging(c)
	return server.NewServer(c.Int("port"), c.String("scenes"), logger).Start()
}

// readLibrary decodes a material library, resolving textures next to it
func readLibrary(path string) (*material.Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open material library: %w", err)
	}
	defer f.Close()
	images := loaders.NewImageCache(filepath.Dir(path))
	return material.DecodeLibrary(f, images.Load)
}

func libraryArg(c *cli.Context) (*material.Library, error) {
	if c.NArg() != 1 {
		return nil, errors.New("missing material library argument")
	}
	return readLibrary(c.Args().First())
}

// shaderKind names a shader type, e.g. "mix" for *material.Mix
func shaderKind(s material.Shader) string {
	return strings.ToLower(strings.TrimPrefix(fmt.Sprintf("%T", s), "*material."))
}

func listMaterialsCommand(c *cli.Context) error {
	lib, err := libraryArg(c)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(c.App.Writer)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"ID", "Name", "Shader", "UUID"})
	for _, m := range lib.Materials() {
		table.Append([]string{
			fmt.Sprintf("%d", m.ID),
			m.Name,
			shaderKind(m.Shader),
			m.UUID.String(),
		})
	}
	table.Render()
	return nil
}

func formatMaterialsCommand(c *cli.Context) error {
	lib, err := libraryArg(c)
	if err != nil {
		return err
	}
	return material.EncodeLibrary(c.App.Writer, lib)
}

func exportCommand(c *cli.Context) error {
	logger := setupLogging(c)

	sceneID := c.Args().First()
	if sceneID == "" {
		sceneID = "default"
	}
	_, s, err := scene.Load(sceneID, c.String("scenes"), logger)
	if err != nil {
		return err
	}

	space := scene.WorldSpace
	if c.Bool("camera-space") {
		space = scene.CameraSpace
	}
	if err := writeFile(c.String("out"), func(f *os.File) error { return scene.ExportOBJ(f, s, space) }); err != nil {
		return err
	}
	logger.Info("Exported geometry", "file", c.String("out"), "objects", len(s.Objects), "triangles", s.TriangleCount())

	if path := c.String("materials"); path != "" {
		if err := writeFile(path, func(f *os.File) error { return material.EncodeLibrary(f, s.Materials) }); err != nil {
			return err
		}
		logger.Info("Exported materials", "file", path, "materials", s.Materials.Len())
	}
	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
