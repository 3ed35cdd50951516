package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend selects the landmark detector implementation
type Backend string

const (
	BackendExec Backend = "exec"
	BackendONNX Backend = "onnx"
)

// Config holds facemorph configuration
type Config struct {
	Detector DetectorConfig `yaml:"detector"`
	ONNX     ONNXConfig     `yaml:"onnx"`
	Workers  int            `yaml:"workers"`
	Log      LogConfig      `yaml:"log"`
}

// DetectorConfig configures the external detector process
type DetectorConfig struct {
	Backend    Backend       `yaml:"backend"`
	Executable string        `yaml:"executable"`
	Model      string        `yaml:"model"`
	Timeout    time.Duration `yaml:"timeout"`
}

// ONNXConfig configures the in-process detector
type ONNXConfig struct {
	Library       string  `yaml:"library"`
	FaceModel     string  `yaml:"face_model"`
	LandmarkModel string  `yaml:"landmark_model"`
	DetectionSize int     `yaml:"detection_size"`
	ConfThreshold float32 `yaml:"conf_threshold"`
	NMSThreshold  float32 `yaml:"nms_threshold"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Detector: DetectorConfig{
			Backend:    BackendExec,
			Executable: "bin/face_landmark_detection_ex",
			Model:      "data/shape_predictor_68_face_landmarks.dat",
		},
		ONNX: ONNXConfig{
			Library:       "lib/libonnxruntime.dylib",
			FaceModel:     "models/scrfd_10g.onnx",
			LandmarkModel: "models/2d106det.onnx",
			DetectionSize: 640,
			ConfThreshold: 0.5,
			NMSThreshold:  0.4,
		},
		Workers: 4,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path over the defaults, applies FACEMORPH_*
// environment overrides and validates the result. An empty path falls back
// to $FACEMORPH_CONFIG; with neither, only defaults and env apply.
//
// Relative paths inside the file resolve against the file's directory.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = strings.TrimSpace(os.Getenv("FACEMORPH_CONFIG"))
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg.resolvePaths(filepath.Dir(path))
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) resolvePaths(dir string) {
	for _, p := range []*string{
		&c.Detector.Executable,
		&c.Detector.Model,
		&c.ONNX.Library,
		&c.ONNX.FaceModel,
		&c.ONNX.LandmarkModel,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("FACEMORPH_DETECTOR_BACKEND")); v != "" {
		c.Detector.Backend = Backend(strings.ToLower(v))
	}
	if v := strings.TrimSpace(os.Getenv("FACEMORPH_DETECTOR_EXECUTABLE")); v != "" {
		c.Detector.Executable = v
	}
	if v := strings.TrimSpace(os.Getenv("FACEMORPH_DETECTOR_MODEL")); v != "" {
		c.Detector.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("FACEMORPH_ONNX_LIBRARY")); v != "" {
		c.ONNX.Library = v
	}
	if v := strings.TrimSpace(os.Getenv("FACEMORPH_WORKERS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FACEMORPH_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := strings.TrimSpace(os.Getenv("FACEMORPH_LOG_LEVEL")); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	var errs []error

	switch c.Detector.Backend {
	case BackendExec:
		if c.Detector.Executable == "" || c.Detector.Model == "" {
			errs = append(errs, errors.New("exec backend requires detector.executable and detector.model"))
		}
	case BackendONNX:
		if c.ONNX.FaceModel == "" || c.ONNX.LandmarkModel == "" {
			errs = append(errs, errors.New("onnx backend requires onnx.face_model and onnx.landmark_model"))
		}
		if c.ONNX.DetectionSize <= 0 || c.ONNX.DetectionSize%32 != 0 {
			errs = append(errs, fmt.Errorf("onnx.detection_size must be a positive multiple of 32, got %d", c.ONNX.DetectionSize))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid detector backend: %q (use 'exec' or 'onnx')", c.Detector.Backend))
	}
	if c.Detector.Timeout < 0 {
		errs = append(errs, errors.New("detector.timeout must not be negative"))
	}
	if c.ONNX.ConfThreshold < 0 || c.ONNX.ConfThreshold > 1 {
		errs = append(errs, fmt.Errorf("onnx.conf_threshold out of [0,1]: %v", c.ONNX.ConfThreshold))
	}
	if c.ONNX.NMSThreshold < 0 || c.ONNX.NMSThreshold > 1 {
		errs = append(errs, fmt.Errorf("onnx.nms_threshold out of [0,1]: %v", c.ONNX.NMSThreshold))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}

	return errors.Join(errs...)
}
