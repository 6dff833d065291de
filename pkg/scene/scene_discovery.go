package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/df07/go-octree-pathtracer/pkg/core"
)

// Scene types reported by discovery
const (
	TypeBuiltin = "builtin"
	TypeFile    = "file"

	builtinGroup = "Built-in Scenes"
	filePrefix   = "file:"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath"`    // Path to the scene file (file type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

type builtin struct {
	info  SceneInfo
	build func() *Scene
}

var builtins = []builtin{
	{SceneInfo{ID: "default", Name: "Default Scene", Description: "Diffuse, mirror and glass spheres on a checkerboard"}, NewDefaultScene},
	{SceneInfo{ID: "cornell-box", Name: "Cornell Box", Description: "Cornell box with a mirror block and a wax ball"}, NewCornellScene},
	{SceneInfo{ID: "glass", Name: "Glass", Description: "Tinted, dispersive and frosted glass"}, NewGlassScene},
}

// Builtin returns a fresh instance of a built-in scene
func Builtin(id string) (*Scene, bool) {
	for _, b := range builtins {
		if b.info.ID == id {
			return b.build(), true
		}
	}
	return nil, false
}

// ListSceneFiles scans dir for .toml scene files. A missing directory is
// not an error.
func ListSceneFiles(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	var scenes []SceneInfo
	for _, path := range files {
		info, err := ParseSceneMetadata(path)
		if err != nil {
			// material libraries and broken files are skipped
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes, nil
}

// ParseSceneMetadata reads the meta table of a scene file. Files without
// objects are not scenes.
func ParseSceneMetadata(path string) (SceneInfo, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	info := SceneInfo{
		ID:       filePrefix + base,
		Name:     titleCase(base),
		Group:    "Scene Files",
		Type:     TypeFile,
		FilePath: path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return info, err
	}
	var header struct {
		Meta    Meta
		Objects []map[string]any
	}
	if err := toml.Unmarshal(data, &header); err != nil {
		return info, err
	}
	if len(header.Objects) == 0 {
		return info, fmt.Errorf("%w: %s has no objects", ErrInvalidDescription, path)
	}

	if header.Meta.Name != "" {
		info.Name = header.Meta.Name
	}
	if header.Meta.Group != "" {
		info.Group = header.Meta.Group
	}
	info.Description = header.Meta.Description
	return info, nil
}

// ListAllScenes returns built-in scenes and the scene files in dir,
// grouped by category with built-ins first
func ListAllScenes(dir string) (ScenesResponse, error) {
	var response ScenesResponse

	all := make([]SceneInfo, 0, len(builtins))
	for _, b := range builtins {
		info := b.info
		info.Group = builtinGroup
		info.Type = TypeBuiltin
		all = append(all, info)
	}

	files, err := ListSceneFiles(dir)
	if err != nil {
		return response, fmt.Errorf("failed to list scene files: %w", err)
	}
	all = append(all, files...)

	groupMap := make(map[string][]SceneInfo)
	for _, s := range all {
		groupMap[s.Group] = append(groupMap[s.Group], s)
	}

	var groupNames []string
	for name := range groupMap {
		if name != builtinGroup {
			groupNames = append(groupNames, name)
		}
	}
	sort.Strings(groupNames)
	groupNames = append([]string{builtinGroup}, groupNames...)

	for _, name := range groupNames {
		if scenes, ok := groupMap[name]; ok {
			response.Groups = append(response.Groups, SceneGroup{Name: name, Scenes: scenes})
		}
	}
	return response, nil
}

// Load resolves a scene ID from ListAllScenes, or a path to a scene file,
// and builds the scene. The description is nil for built-in scenes.
func Load(id, dir string, logger core.Logger) (*Description, *Scene, error) {
	if s, ok := Builtin(id); ok {
		return nil, s, nil
	}
	path := id
	if strings.HasPrefix(id, filePrefix) {
		path = filepath.Join(dir, strings.TrimPrefix(id, filePrefix)+".toml")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
	}
	return LoadDescription(path, logger)
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-empty" -> "Cornell Empty"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}
	return strings.Join(words, " ")
}
