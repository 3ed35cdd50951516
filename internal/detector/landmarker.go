package detector

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/dudu/facemorph/internal/inference"
	"github.com/dudu/facemorph/internal/landmark"
)

// Config holds in-process detector configuration
type Config struct {
	LibraryPath       string // ONNX Runtime shared library
	FaceModelPath     string // SCRFD
	LandmarkModelPath string // 2d106det
	DetectionSize     int
	ConfThreshold     float32
	NMSThreshold      float32
}

// Landmarker locates the 106 landmarks of the most confident face in an
// image without leaving the process.
type Landmarker struct {
	faces     *SCRFD
	landmarks *Landmark106
	log       logrus.FieldLogger

	// sessions and OpenCV buffers are not shared between calls
	mu sync.Mutex
}

// New loads both models
func New(config Config, log logrus.FieldLogger) (*Landmarker, error) {
	log = log.WithField("backend", "onnx")

	if err := inference.Initialize(config.LibraryPath); err != nil {
		return nil, fmt.Errorf("failed to initialize inference: %w", err)
	}

	faces, err := NewSCRFD(config.FaceModelPath, config.DetectionSize, config.ConfThreshold, config.NMSThreshold, log)
	if err != nil {
		inference.Shutdown()
		return nil, fmt.Errorf("failed to create face detector: %w", err)
	}

	landmarks, err := NewLandmark106(config.LandmarkModelPath, log)
	if err != nil {
		faces.Close()
		inference.Shutdown()
		return nil, fmt.Errorf("failed to create landmark detector: %w", err)
	}

	log.WithFields(logrus.Fields{
		"face_model":     config.FaceModelPath,
		"landmark_model": config.LandmarkModelPath,
	}).Info("models loaded")

	return &Landmarker{faces: faces, landmarks: landmarks, log: log}, nil
}

// Detect returns the landmarks of the highest scoring face in the image,
// or landmark.ErrNoFace
func (l *Landmarker) Detect(ctx context.Context, imagePath string) (landmark.PointSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := gocv.IMRead(imagePath, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		return nil, fmt.Errorf("failed to load image: %s", imagePath)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	faces, err := l.faces.Detect(img)
	if err != nil {
		return nil, fmt.Errorf("face detection failed for %s: %w", imagePath, err)
	}
	if len(faces) == 0 {
		return nil, landmark.ErrNoFace
	}
	if len(faces) > 1 {
		l.log.WithFields(logrus.Fields{
			"image": imagePath,
			"faces": len(faces),
		}).Debug("multiple faces, using the most confident")
	}

	landmarks, err := l.landmarks.Detect(img, faces[0].BoundingBox)
	if err != nil {
		return nil, fmt.Errorf("landmark detection failed for %s: %w", imagePath, err)
	}
	return landmarks.PointSet(), nil
}

// Close releases both models and the runtime
func (l *Landmarker) Close() error {
	var errs []error

	if l.faces != nil {
		if err := l.faces.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if l.landmarks != nil {
		if err := l.landmarks.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := inference.Shutdown(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %w", errors.Join(errs...))
	}
	return nil
}
