package locator

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dudu/facemorph/internal/landmark"
)

// Locator turns detector results into point sets for the morph pipeline
type Locator struct {
	detector Detector
	workers  int
	log      logrus.FieldLogger
}

// New creates a locator. workers bounds the concurrency of Batch.
func New(detector Detector, workers int, log logrus.FieldLogger) *Locator {
	if workers < 1 {
		workers = 1
	}
	return &Locator{
		detector: detector,
		workers:  workers,
		log:      log,
	}
}

// FacePoints locates the face landmarks in an image.
// An image without a face yields an empty set and no error. With
// addBoundaryPoints the two boundary points are appended.
func (l *Locator) FacePoints(ctx context.Context, imagePath string, addBoundaryPoints bool) (landmark.PointSet, error) {
	points, err := l.detector.Detect(ctx, imagePath)
	if errors.Is(err, landmark.ErrNoFace) {
		l.log.WithField("image", imagePath).Info("no face found")
		return landmark.PointSet{}, nil
	}
	if err != nil {
		return nil, err
	}

	if addBoundaryPoints {
		points = landmark.WithBoundaryPoints(points)
	}
	l.log.WithFields(logrus.Fields{
		"image":  imagePath,
		"points": len(points),
	}).Debug("located face points")
	return points, nil
}

// Result is the outcome of locating points in one image of a batch
type Result struct {
	ImagePath string
	Points    landmark.PointSet
	Err       error
}

// Batch runs FacePoints over independent images concurrently.
// A failing image does not stop the others; results keep input order.
func (l *Locator) Batch(ctx context.Context, imagePaths []string, addBoundaryPoints bool) []Result {
	results := make([]Result, len(imagePaths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for i, path := range imagePaths {
		g.Go(func() error {
			results[i].ImagePath = path
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			points, err := l.FacePoints(gctx, path, addBoundaryPoints)
			if err != nil {
				l.log.WithError(err).WithField("image", path).Warn("locate face points failed")
			}
			results[i].Points = points
			results[i].Err = err
			return nil
		})
	}
	_ = g.Wait()

	return results
}
