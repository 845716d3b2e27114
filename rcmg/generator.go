package rcmg

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/synthmotion/kinsim/kinematics"
	"github.com/synthmotion/kinsim/kintree"
	"github.com/synthmotion/kinsim/rng"
	"github.com/synthmotion/kinsim/spatialmath"
)

// Generator produces one trajectory sample per key: the generalized
// coordinates per frame and the world-frame pose of every link per frame.
// Generators are pure; the same key always yields the same sample.
type Generator func(key rng.Key) (q [][]float64, xs [][]spatialmath.Transform, err error)

// BatchGenerator produces a fixed-size batch of trajectory samples, shaped
// (batch, frames, ...).
type BatchGenerator func(key rng.Key) (q [][][]float64, xs [][][]spatialmath.Transform, err error)

// BuildGenerator validates that every joint type in the system has both a
// transform model and a trajectory draw, then returns the sampling function.
func BuildGenerator(sys *kintree.System, cfg Config, logger golog.Logger) (Generator, error) {
	draws := make([]DrawFunc, sys.NumLinks())
	widths := make([]int, sys.NumLinks())
	for i := 0; i < sys.NumLinks(); i++ {
		link := sys.Link(i)
		model, err := kintree.LookupJointType(link.JointType)
		if err != nil {
			return nil, err
		}
		draw, err := LookupDraw(link.JointType)
		if err != nil {
			return nil, errors.Wrapf(err, "link %q has no trajectory draw", link.Name)
		}
		draws[i] = draw
		widths[i] = model.QWidth
	}

	nFrames := NumFrames(cfg.T, cfg.Ts)
	qSize := sys.QSize()

	return func(key rng.Key) ([][]float64, [][]spatialmath.Transform, error) {
		linkKeys := key.Split(sys.NumLinks())

		q := make([][]float64, nFrames)
		for f := range q {
			q[f] = make([]float64, 0, qSize)
		}
		for i := 0; i < sys.NumLinks(); i++ {
			keyT, keyValue := linkKeys[i].Split2()
			rows, err := draws[i](cfg, keyT, keyValue, sys.Link(i).JointParams, logger)
			if err != nil {
				return nil, nil, err
			}
			if len(rows) != nFrames {
				return nil, nil, errors.Errorf(
					"draw for link %q produced %d frames, want %d", sys.Link(i).Name, len(rows), nFrames)
			}
			for f := range rows {
				if len(rows[f]) != widths[i] {
					return nil, nil, kintree.NewQLengthError(widths[i], len(rows[f]))
				}
				q[f] = append(q[f], rows[f]...)
			}
		}

		xs := make([][]spatialmath.Transform, nFrames)
		for f := range q {
			worlds, _, err := kinematics.ForwardKinematics(sys, q[f])
			if err != nil {
				return nil, nil, err
			}
			xs[f] = worlds
		}
		return q, xs, nil
	}, nil
}

// Batch stacks a single generator into a fixed batch size.
func Batch(gen Generator, size int) BatchGenerator {
	batch, _ := MixBatch([]Generator{gen}, []int{size})
	return batch
}

// MixBatch stacks several generators into one batched generator; sub-batch i
// contributes sizes[i] consecutive rows. Samples are independent given their
// derived keys, so they are generated in parallel.
func MixBatch(gens []Generator, sizes []int) (BatchGenerator, error) {
	if len(gens) != len(sizes) {
		return nil, errors.Errorf("got %d generators but %d batch sizes", len(gens), len(sizes))
	}
	total := 0
	for _, size := range sizes {
		total += size
	}

	return func(key rng.Key) ([][][]float64, [][][]spatialmath.Transform, error) {
		keys := key.Split(total)
		q := make([][][]float64, total)
		xs := make([][][]spatialmath.Transform, total)

		var group errgroup.Group
		row := 0
		for g, gen := range gens {
			for s := 0; s < sizes[g]; s++ {
				gen := gen
				i := row
				group.Go(func() error {
					qi, xi, err := gen(keys[i])
					if err != nil {
						return err
					}
					q[i] = qi
					xs[i] = xi
					return nil
				})
				row++
			}
		}
		if err := group.Wait(); err != nil {
			return nil, nil, err
		}
		return q, xs, nil
	}, nil
}
