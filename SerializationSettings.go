package ppx

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

/// Integrator tableau chosen by name in configuration files.
type TableauName string

const (
	TableauNameRK1   TableauName = "rk1"
	TableauNameRK2   TableauName = "rk2"
	TableauNameRK4   TableauName = "rk4"
	TableauNameRK38  TableauName = "rk38"
	TableauNameRKF12 TableauName = "rkf12"
	TableauNameRKF45 TableauName = "rkf45"
)

func (name TableauName) toTableau() (ButcherTableau, error) {
	switch name {
	case TableauNameRK1, "":
		return TableauRK1, nil
	case TableauNameRK2:
		return TableauRK2, nil
	case TableauNameRK4:
		return TableauRK4, nil
	case TableauNameRK38:
		return TableauRK38, nil
	case TableauNameRKF12:
		return TableauRKF12, nil
	case TableauNameRKF45:
		return TableauRKF45, nil
	default:
		return ButcherTableau{}, fmt.Errorf("%w: unknown integrator tableau %q", ErrInvalidSpecs, string(name))
	}
}

type DetectionMethodName string

const (
	DetectionNameBruteForce   DetectionMethodName = "brute-force"
	DetectionNameSortAndSweep DetectionMethodName = "sort-and-sweep"
	DetectionNameQuadTree     DetectionMethodName = "quad-tree"
)

func (name DetectionMethodName) toEnum() uint8 {
	switch name {
	case DetectionNameBruteForce:
		return DetectionMethod.E_bruteForce
	case DetectionNameSortAndSweep:
		return DetectionMethod.E_sortAndSweep
	default:
		return DetectionMethod.E_quadTree
	}
}

type ResolutionMethodName string

const (
	ResolutionNameConstraintDriven ResolutionMethodName = "constraint-driven"
	ResolutionNameSpringDriven     ResolutionMethodName = "spring-driven"
)

func (name ResolutionMethodName) toEnum() uint8 {
	if name == ResolutionNameSpringDriven {
		return ResolutionMethod.E_springDriven
	}
	return ResolutionMethod.E_constraintDriven
}

type IntegratorSpecs2D struct {
	Tableau  TableauName `toml:"tableau"`
	Timestep float64     `toml:"timestep"`
}

type ConstraintSpecs2D struct {
	VelocityIterations int  `toml:"velocity_iterations"`
	PositionIterations int  `toml:"position_iterations"`
	Warmup             bool `toml:"warmup"`

	BaumgarteCorrection bool    `toml:"baumgarte_correction"`
	BaumgarteCoef       float64 `toml:"baumgarte_coef"`
	BaumgarteThreshold  float64 `toml:"baumgarte_threshold"`

	Slop                    float64 `toml:"slop"`
	MaxPositionCorrection   float64 `toml:"max_position_correction"`
	PositionResolutionSpeed float64 `toml:"position_resolution_speed"`
}

type QuadTreeSpecs2D struct {
	MaxEntities int     `toml:"max_entities"`
	MaxDepth    int     `toml:"max_depth"`
	MinSize     float64 `toml:"min_size"`
	BuildPeriod int     `toml:"build_period"`
	ForceSquare bool    `toml:"force_square"`
}

type SpringDrivenSpecs2D struct {
	Rigidity       float64 `toml:"rigidity"`
	NormalDamping  float64 `toml:"normal_damping"`
	TangentDamping float64 `toml:"tangent_damping"`
}

type CollisionSpecs2D struct {
	Enabled          bool                 `toml:"enabled"`
	DetectionMethod  DetectionMethodName  `toml:"detection_method"`
	ResolutionMethod ResolutionMethodName `toml:"resolution_method"`
	Multithreading   bool                 `toml:"multithreading"`
	EpaThreshold     float64              `toml:"epa_threshold"`
	ContactLifetime  int                  `toml:"contact_lifetime"`

	QuadTree     QuadTreeSpecs2D     `toml:"quad_tree"`
	SpringDriven SpringDrivenSpecs2D `toml:"spring_driven"`
}

type IslandSpecs2D struct {
	Enabled              bool    `toml:"enable_sleep"`
	SleepEnergyThreshold float64 `toml:"sleep_energy_threshold"`
	SleepTimeThreshold   float64 `toml:"sleep_time_threshold"`
}

/// The full world configuration. Serializes to TOML with one table per
/// subsystem.
type WorldSpecs2D struct {
	Integrator  IntegratorSpecs2D `toml:"integrator"`
	Constraints ConstraintSpecs2D `toml:"constraints"`
	Collision   CollisionSpecs2D  `toml:"collision"`
	Islands     IslandSpecs2D     `toml:"islands"`
}

func MakeWorldSpecs2D() WorldSpecs2D {
	return WorldSpecs2D{
		Integrator: IntegratorSpecs2D{
			Tableau:  TableauNameRK1,
			Timestep: 1e-3,
		},
		Constraints: ConstraintSpecs2D{
			VelocityIterations:      8,
			PositionIterations:      3,
			Warmup:                  true,
			BaumgarteCorrection:     true,
			BaumgarteCoef:           0.035,
			BaumgarteThreshold:      0.1,
			Slop:                    0.15,
			MaxPositionCorrection:   0.2,
			PositionResolutionSpeed: 0.2,
		},
		Collision: CollisionSpecs2D{
			Enabled:          true,
			DetectionMethod:  DetectionNameQuadTree,
			ResolutionMethod: ResolutionNameConstraintDriven,
			Multithreading:   false,
			EpaThreshold:     1e-3,
			ContactLifetime:  2,
			QuadTree: QuadTreeSpecs2D{
				MaxEntities: 12,
				MaxDepth:    12,
				MinSize:     14.0,
				BuildPeriod: 35,
				ForceSquare: false,
			},
			SpringDriven: SpringDrivenSpecs2D{
				Rigidity:       5000.0,
				NormalDamping:  10.0,
				TangentDamping: 10.0,
			},
		},
		Islands: IslandSpecs2D{
			Enabled:              true,
			SleepEnergyThreshold: 0.001,
			SleepTimeThreshold:   1.5,
		},
	}
}

/// Load world specs from a TOML file. Unknown keys fail the decode; a
/// missing file yields the defaults.
func LoadWorldSpecs(path string) (WorldSpecs2D, error) {
	specs := MakeWorldSpecs2D()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return specs, nil
	}
	if err != nil {
		return specs, err
	}

	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&specs); err != nil {
		return MakeWorldSpecs2D(), fmt.Errorf("%w: %v", ErrInvalidSpecs, err)
	}
	return specs, nil
}

func SaveWorldSpecs(specs WorldSpecs2D, path string) error {
	data, err := toml.Marshal(specs)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
