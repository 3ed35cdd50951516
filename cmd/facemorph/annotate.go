package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dudu/facemorph/internal/landmark"
	"github.com/dudu/facemorph/internal/locator"
	"github.com/dudu/facemorph/internal/pointio"
	"github.com/dudu/facemorph/internal/render"
)

var (
	annotatePoints   string
	annotateOut      string
	annotateBoundary int
	annotateRadius   int
	annotateNoLabels bool
)

var annotateCmd = &cobra.Command{
	Use:   "annotate IMAGE",
	Short: "Draw face points onto an image",
	Long: `Draw face points onto a copy of IMAGE. Points come from --points, or are
located with the configured detector (boundary points included) when
--points is not given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		imagePath := args[0]

		var points landmark.PointSet
		boundary := annotateBoundary
		if annotatePoints != "" {
			var err error
			points, err = pointio.ReadCSVFile(annotatePoints)
			if err != nil {
				return err
			}
		} else {
			det, closeDetector, err := newDetector()
			if err != nil {
				return fmt.Errorf("failed to create detector: %w", err)
			}
			defer closeDetector()

			points, err = locator.New(det, 1, log).FacePoints(cmd.Context(), imagePath, true)
			if err != nil {
				return err
			}
			if len(points) == 0 {
				return fmt.Errorf("no face found in %s", imagePath)
			}
			boundary = 2
		}

		out := annotateOut
		if out == "" {
			ext := filepath.Ext(imagePath)
			out = strings.TrimSuffix(imagePath, ext) + "_points" + ext
		}

		opts := render.DefaultOptions()
		opts.Radius = annotateRadius
		opts.Labels = !annotateNoLabels
		opts.Boundary = boundary
		if err := render.Annotate(imagePath, out, points, opts); err != nil {
			return err
		}
		log.WithField("out", out).Info("annotated image written")
		return nil
	},
}

func init() {
	annotateCmd.Flags().StringVar(&annotatePoints, "points", "", "CSV point set to draw")
	annotateCmd.Flags().StringVarP(&annotateOut, "out", "o", "", "output image (default IMAGE_points.EXT)")
	annotateCmd.Flags().IntVar(&annotateBoundary, "boundary", 0, "number of trailing points in --points that are boundary points")
	annotateCmd.Flags().IntVar(&annotateRadius, "radius", 2, "point radius in pixels")
	annotateCmd.Flags().BoolVar(&annotateNoLabels, "no-labels", false, "do not draw point indices")
}
