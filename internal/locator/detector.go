package locator

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dudu/facemorph/internal/landmark"
)

// Detector locates the landmarks of a single face in an image.
// Implementations return landmark.ErrNoFace when the image has no face.
type Detector interface {
	Detect(ctx context.Context, imagePath string) (landmark.PointSet, error)
}

// ExecConfig holds the paths of an external landmark detector
type ExecConfig struct {
	Executable string        // detector binary
	ModelPath  string        // model/data file passed as first argument
	Timeout    time.Duration // per invocation, 0 disables
}

// ExecDetector runs an external detector process per image.
// The process is invoked as `<Executable> <ModelPath> <image>` and prints
// either "X-Y,X-Y,..." or a line starting with NoFaceMarker.
type ExecDetector struct {
	config ExecConfig
	log    logrus.FieldLogger
}

// NewExecDetector creates a detector backed by an external process
func NewExecDetector(config ExecConfig, log logrus.FieldLogger) (*ExecDetector, error) {
	if config.Executable == "" {
		return nil, fmt.Errorf("detector executable required")
	}
	if config.ModelPath == "" {
		return nil, fmt.Errorf("detector model path required")
	}
	return &ExecDetector{
		config: config,
		log:    log.WithField("backend", "exec"),
	}, nil
}

// Detect runs the detector on one image and parses its output
func (d *ExecDetector) Detect(ctx context.Context, imagePath string) (landmark.PointSet, error) {
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, d.config.Executable, d.config.ModelPath, imagePath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return nil, &ExecutionError{ImagePath: imagePath, Stderr: stderr.String(), Err: err}
	}
	d.log.WithFields(logrus.Fields{
		"image":   imagePath,
		"elapsed": time.Since(start),
	}).Debug("detector finished")

	return ParseOutput(imagePath, string(out))
}
