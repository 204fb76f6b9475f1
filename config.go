package backdrop

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("backdrop: invalid config")

// Tuning holds the hand-tuned constants of the frame driver. They were chosen
// by eye and have no derivation; keep them named rather than inlined.
type Tuning struct {
	// PointerSmoothing is the per-frame low-pass factor pulling the smoothed
	// pointer toward its target.
	PointerSmoothing float64
	// CameraSmoothing is the per-frame factor easing the camera toward
	// pointer*CameraTravel.
	CameraSmoothing float64
	// CameraTravel scales the smoothed pointer into camera x/y offset.
	CameraTravel float64
	// CameraDistance is the camera's z position.
	CameraDistance float64
	// FOV is the vertical field of view in degrees.
	FOV float64
	// PointerFalloff divides the camera-relative distance of a node or
	// connector before it is turned into a highlight factor.
	PointerFalloff float64
	// NodeHighlight multiplies the pointer influence on node opacity.
	NodeHighlight float64
	// ConnectorGain and ConnectorMaxOpacity shape connector opacity:
	// clamp(0, max, (1-d)*gain).
	ConnectorGain       float64
	ConnectorMaxOpacity float64
	// ParticleAttraction is the per-frame velocity nudge toward the pointer.
	ParticleAttraction float64
	// ParticleReachX and ParticleReachY scale the pointer NDC into world
	// space for the attraction target.
	ParticleReachX float64
	ParticleReachY float64
	// ParticleSize is the world-space point size before perspective.
	ParticleSize float64
	// FadeIn is the intro fade duration in seconds after every (re)build.
	FadeIn float64
}

// Config describes the scene built at mount.
type Config struct {
	Layers  int
	Cols    int
	Rows    int
	Spacing float64

	// DepthStart is the z of layer 0; each further layer sits DepthStep behind.
	DepthStart float64
	DepthStep  float64
	// LayerFalloff scales speed and opacity down (and node size up) per layer.
	LayerFalloff float64

	SphereRadius         float64
	SphereWidthSegments  int
	SphereHeightSegments int

	Particles       int
	ParticleBoundsX float64 // |x| limit
	ParticleBoundsY float64 // |y| limit
	ParticleDepth   Range   // z limits (Min is the far plane)
	ParticleSpeedXY float64 // initial |vx|, |vy| upper bound
	ParticleSpeedZ  float64 // initial |vz| upper bound

	// Seed feeds the phase and particle generators. Zero picks a random seed.
	Seed uint64

	Tuning Tuning
}

// DefaultConfig returns the 2-layer 8x5 grid with 80 particles.
func DefaultConfig() Config {
	return Config{
		Layers:               2,
		Cols:                 8,
		Rows:                 5,
		Spacing:              3.5,
		DepthStart:           -3,
		DepthStep:            3,
		LayerFalloff:         0.15,
		SphereRadius:         0.25,
		SphereWidthSegments:  12,
		SphereHeightSegments: 10,
		Particles:            80,
		ParticleBoundsX:      25,
		ParticleBoundsY:      15,
		ParticleDepth:        Range{Min: -23, Max: -3},
		ParticleSpeedXY:      0.005,
		ParticleSpeedZ:       0.0025,
		Tuning: Tuning{
			PointerSmoothing:    0.05,
			CameraSmoothing:     0.05,
			CameraTravel:        3,
			CameraDistance:      8,
			FOV:                 75,
			PointerFalloff:      8,
			NodeHighlight:       1.5,
			ConnectorGain:       0.15,
			ConnectorMaxOpacity: 0.12,
			ParticleAttraction:  1e-5,
			ParticleReachX:      20,
			ParticleReachY:      15,
			ParticleSize:        0.02,
			FadeIn:              1.2,
		},
	}
}

// Validate reports the first structural problem in c.
func (c Config) Validate() error {
	switch {
	case c.Layers < 1:
		return fmt.Errorf("%w: layers must be >= 1, got %d", ErrInvalidConfig, c.Layers)
	case c.Cols < 1 || c.Rows < 1:
		return fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrInvalidConfig, c.Cols, c.Rows)
	case c.Spacing <= 0:
		return fmt.Errorf("%w: spacing must be > 0, got %g", ErrInvalidConfig, c.Spacing)
	case c.LayerFalloff < 0:
		return fmt.Errorf("%w: layer falloff must be >= 0, got %g", ErrInvalidConfig, c.LayerFalloff)
	case float64(c.Layers-1)*c.LayerFalloff >= 1:
		// The farthest layer would get zero or negative speed and opacity.
		return fmt.Errorf("%w: %d layers with falloff %g leave the last layer without speed",
			ErrInvalidConfig, c.Layers, c.LayerFalloff)
	case c.Particles < 0:
		return fmt.Errorf("%w: particles must be >= 0, got %d", ErrInvalidConfig, c.Particles)
	case c.SphereWidthSegments < 3 || c.SphereHeightSegments < 2:
		return fmt.Errorf("%w: sphere needs >= 3x2 segments, got %dx%d",
			ErrInvalidConfig, c.SphereWidthSegments, c.SphereHeightSegments)
	case c.ParticleDepth.Min >= c.ParticleDepth.Max:
		return fmt.Errorf("%w: particle depth range is empty", ErrInvalidConfig)
	case c.Tuning.PointerFalloff <= 0:
		return fmt.Errorf("%w: pointer falloff must be > 0", ErrInvalidConfig)
	}
	return nil
}

// configFile is the on-disk overlay. Omitted fields keep their defaults.
type configFile struct {
	Layers    *int     `json:"layers,omitempty"`
	Cols      *int     `json:"cols,omitempty"`
	Rows      *int     `json:"rows,omitempty"`
	Spacing   *float64 `json:"spacing,omitempty"`
	Particles *int     `json:"particles,omitempty"`
	Seed      *uint64  `json:"seed,omitempty"`

	SphereWidthSegments  *int `json:"sphere_width_segments,omitempty"`
	SphereHeightSegments *int `json:"sphere_height_segments,omitempty"`

	PointerSmoothing   *float64 `json:"pointer_smoothing,omitempty"`
	CameraSmoothing    *float64 `json:"camera_smoothing,omitempty"`
	CameraTravel       *float64 `json:"camera_travel,omitempty"`
	PointerFalloff     *float64 `json:"pointer_falloff,omitempty"`
	ParticleAttraction *float64 `json:"particle_attraction,omitempty"`
	FadeIn             *float64 `json:"fade_in,omitempty"`
}

const maxConfigFileSize = 1 << 20

// LoadConfig reads a JSON overlay from path and applies it to DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return cfg, fmt.Errorf("config file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return cfg, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	var f configFile
	if err := json.Unmarshal(data, &f); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", cleanPath, err)
	}
	f.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (f *configFile) apply(c *Config) {
	setInt(&c.Layers, f.Layers)
	setInt(&c.Cols, f.Cols)
	setInt(&c.Rows, f.Rows)
	setFloat(&c.Spacing, f.Spacing)
	setInt(&c.Particles, f.Particles)
	if f.Seed != nil {
		c.Seed = *f.Seed
	}
	setInt(&c.SphereWidthSegments, f.SphereWidthSegments)
	setInt(&c.SphereHeightSegments, f.SphereHeightSegments)
	setFloat(&c.Tuning.PointerSmoothing, f.PointerSmoothing)
	setFloat(&c.Tuning.CameraSmoothing, f.CameraSmoothing)
	setFloat(&c.Tuning.CameraTravel, f.CameraTravel)
	setFloat(&c.Tuning.PointerFalloff, f.PointerFalloff)
	setFloat(&c.Tuning.ParticleAttraction, f.ParticleAttraction)
	setFloat(&c.Tuning.FadeIn, f.FadeIn)
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
