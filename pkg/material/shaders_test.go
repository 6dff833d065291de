package material

import (
	"testing"

	"github.com/chewxy/math32"
	"golang.org/x/exp/rand"

	"github.com/df07/go-octree-pathtracer/pkg/core"
)

// countingStore wraps a store and counts the queries made against it
type countingStore struct {
	store   core.TriangleStore
	queries int
}

func (c *countingStore) NearestHit(ray core.Ray) (core.Hit, bool) {
	c.queries++
	if c.store == nil {
		return core.Hit{}, false
	}
	return c.store.NearestHit(ray)
}

// floorHit is a hit on a triangle in the z=0 plane facing +Z, seen from above
func floorHit(direction core.Vec3) Intersection {
	tri := core.NewTriangle(core.NewVec3(-1, -1, 0), core.NewVec3(1, -1, 0), core.NewVec3(0, 1, 0), 0)
	b := core.Barycentric{Alpha: 1.0 / 3, Beta: 1.0 / 3, Gamma: 1.0 / 3}
	return Intersection{
		Triangle:    tri,
		Barycentric: b,
		Point:       tri.Point(b),
		Direction:   direction.Normalize(),
	}
}

func newTestContext(store core.TriangleStore, env *Environment) *Context {
	return &Context{
		Store:       store,
		Materials:   NewLibrary(),
		Environment: env,
		Random:      rand.New(rand.NewSource(42)),
	}
}

func TestDefault_NormalIncidence(t *testing.T) {
	grey := core.NewColor(0.5, 0.5, 0.5)
	ctx := newTestContext(&countingStore{}, nil)
	result := NewDefault(grey).Shade(ctx, floorHit(core.NewVec3(0, 0, -1)), core.White, 4)
	if !result.Equals(grey, 1e-4) {
		t.Errorf("Expected %v at normal incidence, got %v", grey, result)
	}
}

func TestDefault_EnergyBounded(t *testing.T) {
	ctx := newTestContext(&countingStore{}, nil)
	shader := NewDefault(core.White)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		dir := core.RandomHemisphere(rng, core.NewVec3(0, 0, -1))
		result := shader.Shade(ctx, floorHit(dir), core.White, 1)
		if result.R > 1.0001 || result.R < 0.33 {
			t.Fatalf("Expected brightness in [1/3,1] for direction %v, got %v", dir, result)
		}
	}
}

func TestShaders_DepthZeroReturnsClear(t *testing.T) {
	shaders := []struct {
		name   string
		shader Shader
	}{
		{"diffuse", NewDiffuse(core.White)},
		{"reflection", NewReflection(core.White, 0)},
		{"refraction", NewRefraction(1.5, 0)},
		{"subsurface", NewSubsurface(core.White, 1)},
	}

	for _, tt := range shaders {
		t.Run(tt.name, func(t *testing.T) {
			store := &countingStore{}
			ctx := newTestContext(store, NewEnvironment(core.White, 1))
			result := tt.shader.Shade(ctx, floorHit(core.NewVec3(0, 0, -1)), core.White, 0)
			if result != core.Clear {
				t.Errorf("Expected %v, got %v", core.Clear, result)
			}
			if store.queries != 0 {
				t.Errorf("Expected no intersection queries, got %d", store.queries)
			}
		})
	}
}

func TestDiffuse_UnderWhiteSky(t *testing.T) {
	albedo := core.NewColor(0.5, 0.7, 0.9)
	store := &countingStore{}
	ctx := newTestContext(store, NewEnvironment(core.White, 1))
	shader := NewDiffuse(albedo)

	for i := 0; i < 100; i++ {
		result := shader.Shade(ctx, floorHit(core.NewVec3(0.3, 0.1, -1)), core.White, 3)
		if !result.Equals(albedo, 1e-5) {
			t.Fatalf("Expected %v, got %v", albedo, result)
		}
	}
	if store.queries != 100 {
		t.Errorf("Expected one query per shade, got %d", store.queries)
	}
}

func TestDiffuse_NegligiblePathStops(t *testing.T) {
	store := &countingStore{}
	ctx := newTestContext(store, NewEnvironment(core.White, 1))
	path := core.NewColor(0.0001, 0.0001, 0.0001)

	result := NewDiffuse(core.White).Shade(ctx, floorHit(core.NewVec3(0, 0, -1)), path, 3)
	if result != core.Black {
		t.Errorf("Expected %v, got %v", core.Black, result)
	}
	if store.queries != 0 {
		t.Errorf("Expected no queries for a negligible path, got %d", store.queries)
	}
}

func TestDiffuse_BackFaceScattersTowardViewer(t *testing.T) {
	// the environment is only visible below the floor
	env := &Environment{Texture: halfSky{}, Strength: 1}
	ctx := newTestContext(&countingStore{}, env)

	result := NewDiffuse(core.White).Shade(ctx, floorHit(core.NewVec3(0, 0, 1)), core.White, 2)
	if !result.Equals(core.White, 1e-5) {
		t.Errorf("Expected light from below the floor, got %v", result)
	}
}

// halfSky is white for directions below the horizon and black above
type halfSky struct{}

func (halfSky) Color(uv core.TextureCoordinate, angle float32) core.Color {
	if uv.V < 0.5 {
		return core.White
	}
	return core.Black
}

func TestEmission_Strength(t *testing.T) {
	ctx := newTestContext(&countingStore{}, nil)
	result := NewEmission(core.NewColor(1, 0.5, 0.25), 4).Shade(ctx, floorHit(core.NewVec3(0, 0, -1)), core.White, 1)
	expected := core.Color{R: 4, G: 2, B: 1, A: 4}
	if !result.Equals(expected, 1e-5) {
		t.Errorf("Expected %v, got %v", expected, result)
	}
}

func TestReflection_MirrorsEnvironment(t *testing.T) {
	env := &Environment{Texture: halfSky{}, Strength: 1}
	tint := core.NewColor(0.9, 0.8, 0.7)

	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Color
	}{
		{"from above sees the dark sky", core.NewVec3(0.2, 0, -1), core.Black.Multiply(tint)},
		{"from below sees the bright ground", core.NewVec3(0.2, 0, 1), tint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(&countingStore{}, env)
			result := NewReflection(tint, 0).Shade(ctx, floorHit(tt.direction), core.White, 2)
			if !result.Equals(tt.expected, 1e-5) {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestReflection_RoughStaysAboveSurface(t *testing.T) {
	store := &recordingStore{}
	ctx := newTestContext(store, NewEnvironment(core.White, 1))
	shader := NewReflection(core.White, 1)

	for i := 0; i < 200; i++ {
		shader.Shade(ctx, floorHit(core.NewVec3(0.5, 0, -0.1)), core.White, 2)
	}
	for _, ray := range store.rays {
		if ray.Direction.Z < 0 {
			t.Fatalf("Expected reflected rays above the surface, got %v", ray.Direction)
		}
	}
}

// recordingStore misses every ray and remembers it
type recordingStore struct {
	rays []core.Ray
}

func (r *recordingStore) NearestHit(ray core.Ray) (core.Hit, bool) {
	r.rays = append(r.rays, ray)
	return core.Hit{}, false
}

func TestFresnel(t *testing.T) {
	tests := []struct {
		name     string
		cosI     float32
		cosT     float32
		ior      float32
		expected float32
	}{
		{"normal incidence glass", 1, 1, 1.5, 0.04},
		{"matched index", 0.7, 0.7, 1, 0},
		{"total internal reflection", 0.2, math32.NaN(), 1.5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Fresnel(tt.cosI, tt.cosT, tt.ior)
			if math32.Abs(result-tt.expected) > 1e-5 {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestRefraction_ClearGlassConservesEnergy(t *testing.T) {
	store := &recordingStore{}
	ctx := newTestContext(store, NewEnvironment(core.White, 1))

	result := NewRefraction(1.5, 0).Shade(ctx, floorHit(core.NewVec3(0, 0, -1)), core.White, 2)
	if !result.Equals(core.White, 1e-4) {
		t.Errorf("Expected %v, got %v", core.White, result)
	}
	if len(store.rays) != 2 {
		t.Fatalf("Expected a transmitted and a reflected ray, got %d", len(store.rays))
	}
	if store.rays[0].Direction.Z > -0.999 {
		t.Errorf("Expected the transmitted ray to continue straight down, got %v", store.rays[0].Direction)
	}
	if store.rays[1].Direction.Z < 0.999 {
		t.Errorf("Expected the reflected ray to go straight up, got %v", store.rays[1].Direction)
	}
}

func TestRefraction_TotalInternalReflection(t *testing.T) {
	store := &recordingStore{}
	ctx := newTestContext(store, NewEnvironment(core.White, 1))

	// leaving glass at a grazing angle from below the surface
	result := NewRefraction(1.5, 0).Shade(ctx, floorHit(core.NewVec3(1, 0, 0.2)), core.White, 2)
	if len(store.rays) != 1 {
		t.Fatalf("Expected only a reflected ray, got %d", len(store.rays))
	}
	if store.rays[0].Direction.Z > 0 {
		t.Errorf("Expected the reflection to stay inside the medium, got %v", store.rays[0].Direction)
	}
	if !result.Equals(core.White, 1e-4) {
		t.Errorf("Expected %v, got %v", core.White, result)
	}
}

func TestRefraction_VolumeTint(t *testing.T) {
	r := NewRefraction(1.5, 0)
	r.VolumeColor = core.NewColor(1, 0, 0)
	r.Absorption = 1

	if got := r.volume(0); !got.Equals(core.White, 1e-6) {
		t.Errorf("Expected no tint at zero distance, got %v", got)
	}
	if got := r.volume(math32.Inf(1)); !got.Equals(r.VolumeColor, 1e-6) {
		t.Errorf("Expected full tint at infinite distance, got %v", got)
	}
	half := r.volume(math32.Log(2))
	if math32.Abs(half.G-0.5) > 1e-5 {
		t.Errorf("Expected half tint after ln 2, got %v", half)
	}
}

func TestRefraction_TintsBothBranches(t *testing.T) {
	ctx := newTestContext(&recordingStore{}, NewEnvironment(core.White, 1))
	red := core.NewColor(1, 0, 0)
	glass := &Refraction{Color: red, IOR: 1.5, VolumeColor: core.White}

	result := glass.Shade(ctx, floorHit(core.NewVec3(0, 0, -1)), core.White, 2)
	if !result.Equals(red, 1e-4) {
		t.Errorf("Expected %v, got %v", red, result)
	}
}

func TestRefraction_NegligiblePathStops(t *testing.T) {
	store := &recordingStore{}
	ctx := newTestContext(store, NewEnvironment(core.White, 1))

	result := NewRefraction(1.5, 0).Shade(ctx, floorHit(core.NewVec3(0, 0, -1)), core.NewColor(0.0001, 0.0001, 0.0001), 4)
	if result != core.Black {
		t.Errorf("Expected black, got %v", result)
	}
	if len(store.rays) != 0 {
		t.Errorf("Expected no secondary rays, got %d", len(store.rays))
	}
}

// lowerLightStore hits a white light at a fixed distance for rays heading
// down and misses rays heading up
type lowerLightStore struct {
	light core.MaterialID
	dist  float32
}

func (s lowerLightStore) NearestHit(ray core.Ray) (core.Hit, bool) {
	if ray.Direction.Z >= 0 {
		return core.Hit{}, false
	}
	tri := core.NewTriangle(core.NewVec3(-1, -1, -5), core.NewVec3(1, -1, -5), core.NewVec3(0, 1, -5), s.light)
	return core.Hit{Triangle: tri, T: s.dist, Barycentric: core.Barycentric{Alpha: 1.0 / 3, Beta: 1.0 / 3, Gamma: 1.0 / 3}}, true
}

func TestRefraction_VolumeTintInsideMediumOnly(t *testing.T) {
	tests := []struct {
		name      string
		direction core.Vec3
		expected  float32 // green channel
	}{
		// transmitted ray travels ln 2 inside: 0.96 * 0.5, reflection untinted: 0.04
		{"entering", core.NewVec3(0, 0, -1), 0.96*0.5 + 0.04},
		// internal reflection travels ln 2 inside: 0.04 * 0.5, exit untinted: 0.96
		{"leaving", core.NewVec3(0, 0, 1), 0.96 + 0.04*0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(nil, NewEnvironment(core.White, 1))
			light := ctx.Materials.MustAdd("light", NewEmission(core.White, 1))
			ctx.Store = lowerLightStore{light: light, dist: math32.Log(2)}

			glass := NewRefraction(1.5, 0)
			glass.VolumeColor = core.NewColor(1, 0, 0)
			glass.Absorption = 1

			result := glass.Shade(ctx, floorHit(tt.direction), core.White, 2)
			if math32.Abs(result.R-1) > 1e-4 {
				t.Errorf("Expected red channel 1, got %v", result.R)
			}
			if math32.Abs(result.G-tt.expected) > 1e-4 || math32.Abs(result.B-tt.expected) > 1e-4 {
				t.Errorf("Expected green and blue %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestMix_ExactBlend(t *testing.T) {
	ctx := newTestContext(&countingStore{}, nil)
	red := NewEmission(core.NewColor(1, 0, 0), 1)
	white := NewDefault(core.White)
	in := floorHit(core.NewVec3(0, 0, -1))

	tests := []struct {
		balance  float32
		expected core.Color
	}{
		{1, core.NewColor(1, 0, 0)},
		{0, core.White},
		{0.25, core.NewColor(1, 0.75, 0.75)},
	}

	for _, tt := range tests {
		result := NewMix(red, white, tt.balance).Shade(ctx, in, core.White, 1)
		if !result.Equals(tt.expected, 1e-4) {
			t.Errorf("balance %v: Expected %v, got %v", tt.balance, tt.expected, result)
		}
	}
}

func TestMix_ClampsBalance(t *testing.T) {
	if m := NewMix(nil, nil, 3); m.Balance != 1 {
		t.Errorf("Expected balance 1, got %v", m.Balance)
	}
	if m := NewMix(nil, nil, -1); m.Balance != 0 {
		t.Errorf("Expected balance 0, got %v", m.Balance)
	}
}

func TestAdd_IsUnbounded(t *testing.T) {
	ctx := newTestContext(&countingStore{}, nil)
	light := NewEmission(core.White, 1)

	result := NewAdd(light, light).Shade(ctx, floorHit(core.NewVec3(0, 0, -1)), core.White, 1)
	expected := core.Color{R: 2, G: 2, B: 2, A: 2}
	if !result.Equals(expected, 1e-6) {
		t.Errorf("Expected %v, got %v", expected, result)
	}
}

func TestSubsurface_ExitsThroughSurface(t *testing.T) {
	// a closed floor below the hit so the walk always finds a surface
	lib := NewLibrary()
	glow := lib.MustAdd("glow", NewEmission(core.White, 1))
	store := core.LinearStore{
		core.NewTriangle(core.NewVec3(-100, -100, -1), core.NewVec3(100, -100, -1), core.NewVec3(0, 100, -1), glow),
	}
	ctx := newTestContext(store, nil)
	ctx.Materials = lib

	shader := NewSubsurface(core.NewColor(1, 0.5, 0.5), 0.01)
	for i := 0; i < 50; i++ {
		result := shader.Shade(ctx, floorHit(core.NewVec3(0, 0, -1)), core.White, 8)
		if result.R < 0 || result.R > 1.0001 || result.G > result.R+1e-6 {
			t.Fatalf("Expected a red-tinted color within unit energy, got %v", result)
		}
	}
}

func TestContext_BounceMissUsesEnvironment(t *testing.T) {
	env := NewEnvironment(core.NewColor(0.2, 0.4, 0.6), 2)
	ctx := newTestContext(&countingStore{}, env)

	result := ctx.Bounce(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)), core.White, 1)
	expected := core.Color{R: 0.4, G: 0.8, B: 1.2, A: 2}
	if !result.Equals(expected, 1e-5) {
		t.Errorf("Expected %v, got %v", expected, result)
	}
}

func TestContext_UnknownMaterialFallsBack(t *testing.T) {
	tri := core.NewTriangle(core.NewVec3(-1, -1, 0), core.NewVec3(1, -1, 0), core.NewVec3(0, 1, 0), 99)
	ctx := newTestContext(core.LinearStore{tri}, nil)

	result := ctx.Bounce(core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1)), core.White, 1)
	expected := core.NewColor(0.8, 0.8, 0.8)
	if !result.Equals(expected, 1e-4) {
		t.Errorf("Expected preview grey %v, got %v", expected, result)
	}
}
