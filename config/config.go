// Package config loads kinematic systems and motion-generation settings
// from YAML descriptions.
package config

import (
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/synthmotion/kinsim/kintree"
	"github.com/synthmotion/kinsim/rcmg"
	"github.com/synthmotion/kinsim/spatialmath"
)

// LinkConfig describes one link of the system. Parent refers to an earlier
// link by name; an empty parent attaches the link to the world frame.
type LinkConfig struct {
	Name   string    `yaml:"name"`
	Parent string    `yaml:"parent"`
	Joint  string    `yaml:"joint"`
	Params []float64 `yaml:"params"`
	// Pos and EulerXYZ give the static parent-to-child offset at zero
	// configuration; EulerXYZ is in radians.
	Pos      []float64 `yaml:"pos"`
	EulerXYZ []float64 `yaml:"euler_xyz"`
}

// MotionConfig overrides motion-generation defaults. Pointer fields
// distinguish "unset" from an explicit zero.
type MotionConfig struct {
	T                               *float64 `yaml:"t"`
	Ts                              *float64 `yaml:"ts"`
	TMin                            *float64 `yaml:"t_min"`
	TMax                            *float64 `yaml:"t_max"`
	DangMin                         *float64 `yaml:"dang_min"`
	DangMax                         *float64 `yaml:"dang_max"`
	DangMinFreeSpherical            *float64 `yaml:"dang_min_free_spherical"`
	DangMaxFreeSpherical            *float64 `yaml:"dang_max_free_spherical"`
	DeltaAngMin                     *float64 `yaml:"delta_ang_min"`
	DeltaAngMax                     *float64 `yaml:"delta_ang_max"`
	DPosMin                         *float64 `yaml:"dpos_min"`
	DPosMax                         *float64 `yaml:"dpos_max"`
	PosMin                          *float64 `yaml:"pos_min"`
	PosMax                          *float64 `yaml:"pos_max"`
	Ang0Min                         *float64 `yaml:"ang0_min"`
	Ang0Max                         *float64 `yaml:"ang0_max"`
	Pos0Min                         *float64 `yaml:"pos0_min"`
	Pos0Max                         *float64 `yaml:"pos0_max"`
	RandomizedInterpolationAngle    *bool    `yaml:"randomized_interpolation_angle"`
	RandomizedInterpolationPosition *bool    `yaml:"randomized_interpolation_position"`
	RangeOfMotionHinge              *bool    `yaml:"range_of_motion_hinge"`
	RangeOfMotionHingeMethod        *string  `yaml:"range_of_motion_hinge_method"`
	CDFBinsMin                      *int     `yaml:"cdf_bins_min"`
	CDFBinsMax                      *int     `yaml:"cdf_bins_max"`
	InterpolationMethod             *string  `yaml:"interpolation_method"`
	MaxIter                         *int     `yaml:"max_iter"`
}

// File is the top-level YAML document.
type File struct {
	Links  []LinkConfig `yaml:"links"`
	Motion MotionConfig `yaml:"motion"`
}

// Load reads and parses a YAML description from disk.
func Load(path string) (*kintree.System, rcmg.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rcmg.Config{}, errors.Wrapf(err, "cannot read config %q", path)
	}
	return Parse(data)
}

// Parse builds a validated system and motion config from a YAML document.
func Parse(data []byte) (*kintree.System, rcmg.Config, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, rcmg.Config{}, errors.Wrap(err, "cannot parse config")
	}

	nameToIdx := map[string]int{}
	links := make([]kintree.Link, len(file.Links))
	for i, lc := range file.Links {
		parent := -1
		if lc.Parent != "" {
			idx, ok := nameToIdx[lc.Parent]
			if !ok {
				return nil, rcmg.Config{}, errors.Errorf(
					"link %q names parent %q, which is not defined before it", lc.Name, lc.Parent)
			}
			parent = idx
		}
		tf, err := staticOffset(lc)
		if err != nil {
			return nil, rcmg.Config{}, err
		}
		links[i] = kintree.Link{
			Name:        lc.Name,
			Parent:      parent,
			JointType:   lc.Joint,
			JointParams: lc.Params,
			Transform1:  tf,
		}
		nameToIdx[lc.Name] = i
	}
	sys, err := kintree.NewSystem(links)
	if err != nil {
		return nil, rcmg.Config{}, err
	}
	return sys, motionConfig(file.Motion), nil
}

func staticOffset(lc LinkConfig) (spatialmath.Transform, error) {
	tf := spatialmath.NewZeroTransform()
	if lc.Pos != nil {
		if len(lc.Pos) != 3 {
			return tf, errors.Errorf("link %q: pos must have 3 entries", lc.Name)
		}
		tf.Pos = r3.Vector{X: lc.Pos[0], Y: lc.Pos[1], Z: lc.Pos[2]}
	}
	if lc.EulerXYZ != nil {
		if len(lc.EulerXYZ) != 3 {
			return tf, errors.Errorf("link %q: euler_xyz must have 3 entries", lc.Name)
		}
		tf.Rot = spatialmath.QuatFromEulerXYZ(lc.EulerXYZ[0], lc.EulerXYZ[1], lc.EulerXYZ[2])
	}
	return tf, nil
}

func motionConfig(mc MotionConfig) rcmg.Config {
	cfg := rcmg.DefaultConfig()
	setFloat := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setScalar := func(dst *rcmg.Scalar, src *float64) {
		if src != nil {
			*dst = rcmg.Const(*src)
		}
	}
	setFloat(&cfg.T, mc.T)
	setFloat(&cfg.Ts, mc.Ts)
	setFloat(&cfg.TMin, mc.TMin)
	setScalar(&cfg.TMax, mc.TMax)
	setScalar(&cfg.DangMin, mc.DangMin)
	setScalar(&cfg.DangMax, mc.DangMax)
	setScalar(&cfg.DangMinFreeSpherical, mc.DangMinFreeSpherical)
	setScalar(&cfg.DangMaxFreeSpherical, mc.DangMaxFreeSpherical)
	setScalar(&cfg.DeltaAngMin, mc.DeltaAngMin)
	setScalar(&cfg.DeltaAngMax, mc.DeltaAngMax)
	setScalar(&cfg.DPosMin, mc.DPosMin)
	setScalar(&cfg.DPosMax, mc.DPosMax)
	setScalar(&cfg.PosMin, mc.PosMin)
	setScalar(&cfg.PosMax, mc.PosMax)
	setFloat(&cfg.Ang0Min, mc.Ang0Min)
	setFloat(&cfg.Ang0Max, mc.Ang0Max)
	setFloat(&cfg.Pos0Min, mc.Pos0Min)
	setFloat(&cfg.Pos0Max, mc.Pos0Max)
	if mc.RandomizedInterpolationAngle != nil {
		cfg.RandomizedInterpolationAngle = *mc.RandomizedInterpolationAngle
	}
	if mc.RandomizedInterpolationPosition != nil {
		cfg.RandomizedInterpolationPosition = *mc.RandomizedInterpolationPosition
	}
	if mc.RangeOfMotionHinge != nil {
		cfg.RangeOfMotionHinge = *mc.RangeOfMotionHinge
	}
	if mc.RangeOfMotionHingeMethod != nil {
		cfg.RangeOfMotionHingeMethod = *mc.RangeOfMotionHingeMethod
	}
	if mc.CDFBinsMin != nil {
		cfg.CDFBinsMin = *mc.CDFBinsMin
	}
	if mc.CDFBinsMax != nil {
		cfg.CDFBinsMax = *mc.CDFBinsMax
	}
	if mc.InterpolationMethod != nil {
		cfg.InterpolationMethod = *mc.InterpolationMethod
	}
	if mc.MaxIter != nil {
		cfg.MaxIter = *mc.MaxIter
	}
	return cfg
}
