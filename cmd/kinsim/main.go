// kinsim generates synthetic motion trajectories and IMU data from a YAML
// system description.
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/spf13/cobra"
	"go.viam.com/utils"

	"github.com/synthmotion/kinsim/config"
	"github.com/synthmotion/kinsim/imu"
	"github.com/synthmotion/kinsim/rcmg"
	"github.com/synthmotion/kinsim/rng"
)

var (
	configPath string
	seed       uint64
	batchSize  int
	outDir     string
	withIMU    bool
	imuLink    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kinsim",
		Short: "Synthetic kinematics and IMU data generation",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML system description")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 1, "random seed")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Sample a batch of trajectories and write them as CSV",
		RunE:  runGenerate,
	}
	generateCmd.Flags().IntVarP(&batchSize, "batch", "b", 1, "number of trajectories")
	generateCmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	generateCmd.Flags().BoolVar(&withIMU, "imu", false, "also write simulated IMU measurements")
	generateCmd.Flags().IntVar(&imuLink, "imu-link", 0, "link index carrying the IMU")

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "Plot a sampled angle trajectory to PNG",
		RunE:  runPlot,
	}
	plotCmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")

	rootCmd.AddCommand(generateCmd, plotCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	logger := golog.NewDevelopmentLogger("kinsim")
	sys, cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	gen, err := rcmg.BuildGenerator(sys, cfg, logger)
	if err != nil {
		return err
	}
	key, imuKey := rng.NewKey(seed).Split2()
	q, xs, err := rcmg.Batch(gen, batchSize)(key)
	if err != nil {
		return err
	}
	imuKeys := imuKey.Split(batchSize)
	for b := range q {
		path := filepath.Join(outDir, fmt.Sprintf("trajectory_%03d.csv", b))
		if err := writeCSV(path, q[b]); err != nil {
			return err
		}
		logger.Infow("wrote trajectory", "path", path, "frames", len(q[b]))
		if !withIMU {
			continue
		}
		m, err := imu.Simulate(extractLink(xs[b], imuLink), r3.Vector{Z: 9.81}, cfg.Ts, imuKeys[b], imu.Options{Noisy: true})
		if err != nil {
			return err
		}
		imuPath := filepath.Join(outDir, fmt.Sprintf("imu_%03d.csv", b))
		if err := writeIMUCSV(imuPath, m); err != nil {
			return err
		}
		logger.Infow("wrote imu measurements", "path", imuPath)
	}
	return nil
}

func runPlot(cmd *cobra.Command, _ []string) error {
	logger := golog.NewDevelopmentLogger("kinsim")
	_, cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	keyT, keyAng := rng.NewKey(seed).Split2()
	angle, err := rcmg.RandomAngleOverTime(keyT, keyAng, rcmg.AngleParams{
		DangMin:             cfg.DangMin,
		DangMax:             cfg.DangMax,
		DeltaAngMin:         cfg.DeltaAngMin,
		DeltaAngMax:         cfg.DeltaAngMax,
		TMin:                cfg.TMin,
		TMax:                cfg.TMax,
		T:                   cfg.T,
		Ts:                  cfg.Ts,
		MaxIter:             cfg.MaxIter,
		RangeOfMotion:       cfg.RangeOfMotionHinge,
		RangeOfMotionMethod: cfg.RangeOfMotionHingeMethod,
		CDFBinsMin:          cfg.CDFBinsMin,
		CDFBinsMax:          cfg.CDFBinsMax,
		InterpolationMethod: cfg.InterpolationMethod,
	}, logger)
	if err != nil {
		return err
	}
	path := filepath.Join(outDir, "angle_trajectory.png")
	if err := plotSeries(path, cfg.Ts, angle); err != nil {
		return err
	}
	logger.Infow("wrote plot", "path", path)
	return nil
}

func writeCSV(path string, rows [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(f.Close)
	w := csv.NewWriter(f)
	defer w.Flush()
	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func writeIMUCSV(path string, m imu.Measurement) error {
	rows := make([][]float64, len(m.Acc))
	for i := range rows {
		rows[i] = []float64{
			m.Acc[i].X, m.Acc[i].Y, m.Acc[i].Z,
			m.Gyr[i].X, m.Gyr[i].Y, m.Gyr[i].Z,
		}
	}
	return writeCSV(path, rows)
}
