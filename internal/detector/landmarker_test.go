package detector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/dudu/facemorph/internal/inference"
)

func TestNewReleasesRuntimeOnModelError(t *testing.T) {
	lib := os.Getenv("FACEMORPH_ONNX_LIBRARY")
	if lib == "" {
		t.Skip("FACEMORPH_ONNX_LIBRARY not set")
	}
	log, _ := test.NewNullLogger()
	dir := t.TempDir()

	_, err := New(Config{
		LibraryPath:       lib,
		FaceModelPath:     filepath.Join(dir, "missing_faces.onnx"),
		LandmarkModelPath: filepath.Join(dir, "missing_landmarks.onnx"),
		DetectionSize:     640,
		ConfThreshold:     0.5,
		NMSThreshold:      0.4,
	}, log)
	require.Error(t, err)

	_, err = inference.NewSession(filepath.Join(dir, "missing_faces.onnx"), nil, nil, log)
	require.ErrorContains(t, err, "not initialized")
}
