package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dudu/facemorph/internal/locator"
	"github.com/dudu/facemorph/internal/pointio"
)

var (
	pointsBoundary bool
	pointsOutDir   string
)

var pointsCmd = &cobra.Command{
	Use:   "points IMAGE...",
	Short: "Locate face points in images",
	Long: `Locate the face landmarks of each image. Without --out every face is printed
as "IMAGE<TAB>X-Y,X-Y,..."; with --out one IMAGE.csv is written per face.
Images without a face are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPoints,
}

func init() {
	pointsCmd.Flags().BoolVar(&pointsBoundary, "boundary", true, "append the two boundary points")
	pointsCmd.Flags().StringVarP(&pointsOutDir, "out", "o", "", "directory for per-image CSV files")
}

func runPoints(cmd *cobra.Command, args []string) error {
	var outPaths map[string]string
	if pointsOutDir != "" {
		var err error
		if outPaths, err = csvPaths(pointsOutDir, args); err != nil {
			return err
		}
	}

	det, closeDetector, err := newDetector()
	if err != nil {
		return fmt.Errorf("failed to create detector: %w", err)
	}
	defer closeDetector()

	if pointsOutDir != "" {
		if err := os.MkdirAll(pointsOutDir, 0o755); err != nil {
			return err
		}
	}

	loc := locator.New(det, cfg.Workers, log)
	results := loc.Batch(cmd.Context(), args, pointsBoundary)

	var failed, skipped int
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		if len(r.Points) == 0 {
			skipped++
			continue
		}
		if pointsOutDir == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.ImagePath, pointio.FormatText(r.Points))
			continue
		}
		if err := pointio.WriteCSVFile(outPaths[r.ImagePath], r.Points); err != nil {
			return err
		}
	}

	log.WithFields(logrus.Fields{
		"images":  len(args),
		"skipped": skipped,
		"failed":  failed,
	}).Info("done")
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(args))
	}
	return nil
}

// csvPaths maps each image to its CSV file in dir. Two images that would
// write the same file are an error.
func csvPaths(dir string, images []string) (map[string]string, error) {
	paths := make(map[string]string, len(images))
	owners := make(map[string]string, len(images))
	for _, img := range images {
		out := filepath.Join(dir, strings.TrimSuffix(filepath.Base(img), filepath.Ext(img))+".csv")
		if prev, ok := owners[out]; ok {
			return nil, fmt.Errorf("%s and %s would both be written to %s", prev, img, out)
		}
		owners[out] = img
		paths[img] = out
	}
	return paths, nil
}
