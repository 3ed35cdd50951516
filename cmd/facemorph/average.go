package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dudu/facemorph/internal/landmark"
	"github.com/dudu/facemorph/internal/pointio"
)

var (
	averageOut string

	blendPercent float64
	blendFrames  int
	blendOut     string
)

var averageCmd = &cobra.Command{
	Use:   "average FILE.csv...",
	Short: "Average aligned point sets",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sets := make([]landmark.PointSet, len(args))
		for i, path := range args {
			s, err := pointio.ReadCSVFile(path)
			if err != nil {
				return err
			}
			sets[i] = s
		}

		avg, err := landmark.Average(sets)
		if err != nil {
			return err
		}
		log.WithField("sets", len(sets)).Info("averaged point sets")
		return writePoints(cmd, averageOut, avg)
	},
}

var blendCmd = &cobra.Command{
	Use:   "blend START.csv END.csv",
	Short: "Blend two aligned point sets",
	Long: `Blend two point sets. --percent is the weight of START: 1 gives START,
0 gives END. With --frames N, N in-between sets with evenly spaced weights
are written to the --out directory as frame_001.csv, frame_002.csv, ...`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := pointio.ReadCSVFile(args[0])
		if err != nil {
			return err
		}
		end, err := pointio.ReadCSVFile(args[1])
		if err != nil {
			return err
		}

		if blendFrames <= 0 {
			out, err := landmark.WeightedAverage(start, end, blendPercent)
			if err != nil {
				return err
			}
			return writePoints(cmd, blendOut, out)
		}

		if blendOut == "" {
			return fmt.Errorf("--frames requires --out directory")
		}
		if err := os.MkdirAll(blendOut, 0o755); err != nil {
			return err
		}
		for i, percent := range frameWeights(blendFrames) {
			out, err := landmark.WeightedAverage(start, end, percent)
			if err != nil {
				return err
			}
			path := filepath.Join(blendOut, fmt.Sprintf("frame_%03d.csv", i+1))
			if err := pointio.WriteCSVFile(path, out); err != nil {
				return err
			}
		}
		log.WithField("frames", blendFrames).Info("wrote blended point sets")
		return nil
	},
}

func init() {
	averageCmd.Flags().StringVarP(&averageOut, "out", "o", "", "output CSV (default stdout)")

	blendCmd.Flags().Float64VarP(&blendPercent, "percent", "p", landmark.DefaultWeight, "weight of START in [0, 1]")
	blendCmd.Flags().IntVarP(&blendFrames, "frames", "n", 0, "number of in-between frames")
	blendCmd.Flags().StringVarP(&blendOut, "out", "o", "", "output CSV, or directory with --frames (default stdout)")
}

// frameWeights returns n weights moving from START towards END, excluding
// both endpoints
func frameWeights(n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1 - float64(i+1)/float64(n+1)
	}
	return weights
}

func writePoints(cmd *cobra.Command, path string, points landmark.PointSet) error {
	if path == "" {
		return pointio.WriteCSV(cmd.OutOrStdout(), points)
	}
	return pointio.WriteCSVFile(path, points)
}
