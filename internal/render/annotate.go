package render

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"gocv.io/x/gocv"

	"github.com/dudu/facemorph/internal/landmark"
)

var (
	landmarkColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	boundaryColor = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	labelColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Options controls overlay drawing
type Options struct {
	Radius int
	Labels bool // draw the landmark index next to each point
	// Boundary is the number of trailing points drawn as boundary points
	Boundary int
}

// DefaultOptions draws small dots with index labels
func DefaultOptions() Options {
	return Options{Radius: 2, Labels: true}
}

// Draw paints points onto img in place
func Draw(img *gocv.Mat, points landmark.PointSet, opts Options) {
	firstBoundary := len(points) - opts.Boundary
	for i, p := range points {
		c := landmarkColor
		if i >= firstBoundary {
			c = boundaryColor
		}
		pt := image.Pt(p.X, p.Y)
		gocv.Circle(img, pt, opts.Radius, c, -1)
		if opts.Labels {
			gocv.PutText(img, strconv.Itoa(i), pt.Add(image.Pt(opts.Radius+1, -opts.Radius-1)),
				gocv.FontHersheyPlain, 0.7, labelColor, 1)
		}
	}
}

// Annotate reads imagePath, draws points on it and writes outPath.
// The output format follows the outPath extension.
func Annotate(imagePath, outPath string, points landmark.PointSet, opts Options) error {
	img := gocv.IMRead(imagePath, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		return fmt.Errorf("failed to load image: %s", imagePath)
	}

	Draw(&img, points, opts)

	gocv.PutText(&img, fmt.Sprintf("%d points", len(points)), image.Pt(10, 30),
		gocv.FontHersheyPlain, 2, landmarkColor, 2)

	if ok := gocv.IMWrite(outPath, img); !ok {
		return fmt.Errorf("failed to write image: %s", outPath)
	}
	return nil
}
