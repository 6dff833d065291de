package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-octree-pathtracer/pkg/core"
	"github.com/df07/go-octree-pathtracer/pkg/material"
	"github.com/df07/go-octree-pathtracer/pkg/renderer"
	"github.com/df07/go-octree-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	ObjectName   string                 `json:"objectName,omitempty"`
	MaterialName string                 `json:"materialName,omitempty"`
	MaterialType string                 `json:"materialType,omitempty"`
	Point        [3]float32             `json:"point"`
	Normal       [3]float32             `json:"normal"`
	Distance     float32                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
	Object       map[string]interface{} `json:"object,omitempty"`
}

// extractMaterialInfo describes a shader tree with type assertions
func extractMaterialInfo(shader material.Shader) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := shader.(type) {
	case *material.Default:
		addSurface(properties, m.Color, m.Texture)
		return "default", properties

	case *material.Diffuse:
		addSurface(properties, m.Color, m.Texture)
		return "diffuse", properties

	case *material.Emission:
		addSurface(properties, m.Color, m.Texture)
		properties["strength"] = m.Strength
		return "emission", properties

	case *material.Reflection:
		addSurface(properties, m.Color, m.Texture)
		properties["roughness"] = m.Roughness
		return "reflection", properties

	case *material.Refraction:
		addSurface(properties, m.Color, m.Texture)
		properties["ior"] = m.IOR
		properties["roughness"] = m.Roughness
		if m.Absorption > 0 {
			properties["volumeColor"] = colorArray(m.VolumeColor)
			properties["absorption"] = m.Absorption
		}
		return "refraction", properties

	case *material.Subsurface:
		addSurface(properties, m.Color, m.Texture)
		properties["density"] = m.Density
		return "subsurface", properties

	case *material.Add:
		properties["first"] = nestedInfo(m.First)
		properties["second"] = nestedInfo(m.Second)
		return "add", properties

	case *material.Mix:
		firstType, _ := extractMaterialInfo(m.First)
		secondType, _ := extractMaterialInfo(m.Second)
		properties["first"] = nestedInfo(m.First)
		properties["second"] = nestedInfo(m.Second)
		properties["balance"] = m.Balance
		properties["description"] = fmt.Sprintf("%.0f%% %s, %.0f%% %s",
			(1-m.Balance)*100, firstType, m.Balance*100, secondType)
		return "mix", properties

	default:
		return "unknown", properties
	}
}

func nestedInfo(shader material.Shader) map[string]interface{} {
	kind, props := extractMaterialInfo(shader)
	return map[string]interface{}{
		"type":       kind,
		"properties": props,
	}
}

func addSurface(properties map[string]interface{}, c core.Color, tex material.Texture) {
	properties["color"] = colorArray(c)
	properties["hex"] = hexColor(c)
	switch tex.(type) {
	case nil:
	case *material.Checkerboard:
		properties["texture"] = "checkerboard"
	case *material.ImageTexture:
		properties["texture"] = "image"
	default:
		properties["texture"] = "custom"
	}
}

func colorArray(c core.Color) [3]float32 {
	return [3]float32{c.R, c.G, c.B}
}

func hexColor(c core.Color) string {
	c = c.Clamp()
	return fmt.Sprintf("#%02x%02x%02x", int(c.R*255), int(c.G*255), int(c.B*255))
}

// InspectResult contains the hit and the object it belongs to
type InspectResult struct {
	Hit    core.Hit
	Ray    core.Ray
	Object scene.Object
}

// inspectPixel casts the center ray of a pixel and returns the first
// triangle hit, or false on a miss
func inspectPixel(sceneObj *scene.Scene, width, height, pixelX, pixelY int) (InspectResult, bool) {
	camera := renderer.NewCamera(sceneObj.Camera, width, height)
	ray := camera.CenterRay(pixelX, pixelY)

	index := core.NewOctree(sceneObj.Triangles(), core.OctreeOptions{})
	hit, ok := index.NearestHit(ray)
	if !ok {
		return InspectResult{Ray: ray}, false
	}

	// the index does not know objects, find the owner of the triangle
	for _, obj := range sceneObj.Objects {
		for _, tri := range obj.Transformed() {
			if tri == hit.Triangle {
				return InspectResult{Hit: hit, Ray: ray, Object: obj}, true
			}
		}
	}
	return InspectResult{Hit: hit, Ray: ray}, true
}

// extractObjectInfo describes the object that was hit
func extractObjectInfo(obj scene.Object) map[string]interface{} {
	tris := obj.Transformed()
	var points []core.Point3
	for _, tri := range tris {
		p := tri.Points()
		points = append(points, p[:]...)
	}
	bbox := core.NewAABBFromPoints(points...)
	return map[string]interface{}{
		"triangleCount": len(tris),
		"boundingBox": map[string]interface{}{
			"min": [3]float32{bbox.Min.X, bbox.Min.Y, bbox.Min.Z},
			"max": [3]float32{bbox.Max.X, bbox.Max.Y, bbox.Max.Z},
		},
	}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	query := r.URL.Query()
	sceneID := query.Get("scene")
	if sceneID == "" {
		sceneID = "cornell-box"
	}
	width, err := parseIntParam(query, "width", 400, 1, 4000)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	height, err := parseIntParam(query, "height", 400, 1, 4000)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	pixelX, err := strconv.Atoi(query.Get("x"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
		return
	}
	pixelY, err := strconv.Atoi(query.Get("y"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
		return
	}
	if pixelX < 0 || pixelX >= width || pixelY < 0 || pixelY >= height {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}

	_, sceneObj, err := scene.Load(sceneID, s.scenesDir, nil)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := sceneObj.Camera.Validate(); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, ok := inspectPixel(sceneObj, width, height, pixelX, pixelY)
	if !ok {
		s.writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	hit := result.Hit
	point := result.Ray.At(hit.T)
	normal := hit.Triangle.InterpolatedNormal(hit.Barycentric)
	response := InspectResponse{
		Hit:       true,
		Point:     [3]float32{point.X, point.Y, point.Z},
		Normal:    [3]float32{normal.X, normal.Y, normal.Z},
		Distance:  hit.T * result.Ray.Direction.Length(),
		FrontFace: result.Ray.Direction.Dot(normal) < 0,
	}
	if result.Object != nil {
		response.ObjectName = result.Object.Name()
		response.Object = extractObjectInfo(result.Object)
	}
	if mat, err := sceneObj.Materials.Get(hit.Triangle.Material); err == nil {
		response.MaterialName = mat.Name
		response.MaterialType, response.Properties = extractMaterialInfo(mat.Shader)
	}

	s.writeJSON(w, http.StatusOK, response)
}
