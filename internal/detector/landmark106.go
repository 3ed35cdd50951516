package detector

import (
	"fmt"
	"image"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"github.com/dudu/facemorph/internal/inference"
)

// landmarkInputSize is the square input of the 2d106det model
const landmarkInputSize = 192

// landmarkCropScale expands the face box before cropping, as insightface does
const landmarkCropScale = 1.5

// Landmark106 detects 106 facial landmarks using insightface's 2d106det model
type Landmark106 struct {
	session *inference.Session
}

// NewLandmark106 creates a new 106-point landmark detector
func NewLandmark106(modelPath string, log logrus.FieldLogger) (*Landmark106, error) {
	session, err := inference.NewSession(modelPath, []string{"data"}, []string{"fc1"}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create landmark session: %w", err)
	}
	return &Landmark106{session: session}, nil
}

// Detect refines a detected face box into 106 landmarks in image coordinates
func (l *Landmark106) Detect(img gocv.Mat, box BoundingBox) (*Landmarks106, error) {
	if box.Width() <= 0 || box.Height() <= 0 {
		return nil, fmt.Errorf("degenerate face box %+v", box)
	}
	center := box.Center()
	scale := float32(landmarkInputSize) / (max(box.Width(), box.Height()) * landmarkCropScale)

	M := cropTransform(center, scale)
	defer M.Close()

	aligned := gocv.NewMat()
	defer aligned.Close()
	gocv.WarpAffine(img, &aligned, M, image.Pt(landmarkInputSize, landmarkInputSize))

	// 2d106det takes raw 0-255 RGB
	blob := gocv.BlobFromImage(aligned, 1.0, image.Pt(landmarkInputSize, landmarkInputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	input, err := ort.NewTensor(
		ort.NewShape(1, 3, landmarkInputSize, landmarkInputSize),
		bytesToFloat32(blob.ToBytes()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := inference.NewEmptyTensor[float32](1, numLandmarks*2)
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer output.Destroy()

	if err := l.session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return nil, fmt.Errorf("landmark inference failed: %w", err)
	}

	landmarks := decodeLandmarks(output.GetData(), center, scale)
	return &landmarks, nil
}

// cropTransform maps the image so center lands in the middle of the model
// input, scaled by scale, without rotation
func cropTransform(center Point, scale float32) gocv.Mat {
	half := float64(landmarkInputSize) / 2

	M := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	M.SetDoubleAt(0, 0, float64(scale))
	M.SetDoubleAt(0, 1, 0)
	M.SetDoubleAt(0, 2, half-float64(center.X*scale))
	M.SetDoubleAt(1, 0, 0)
	M.SetDoubleAt(1, 1, float64(scale))
	M.SetDoubleAt(1, 2, half-float64(center.Y*scale))
	return M
}

// decodeLandmarks maps model output in [-1, 1] back to image coordinates
func decodeLandmarks(output []float32, center Point, scale float32) Landmarks106 {
	var landmarks Landmarks106
	half := float32(landmarkInputSize) / 2

	for i := range landmarks {
		// (v + 1) * half is the crop pixel; subtracting half recenters it
		landmarks[i] = Point{
			X: output[i*2]*half/scale + center.X,
			Y: output[i*2+1]*half/scale + center.Y,
		}
	}
	return landmarks
}

// Close releases detector resources
func (l *Landmark106) Close() error {
	return l.session.Destroy()
}
