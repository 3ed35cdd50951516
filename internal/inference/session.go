package inference

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"
)

var (
	initialized bool
	initMu      sync.Mutex
)

// Initialize loads the ONNX Runtime shared library and sets up the
// environment. Calls after the first successful one are no-ops.
func Initialize(libraryPath string) error {
	initMu.Lock()
	defer initMu.Unlock()

	if initialized {
		return nil
	}

	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
	}

	initialized = true
	return nil
}

// Shutdown cleans up ONNX Runtime environment
func Shutdown() error {
	initMu.Lock()
	defer initMu.Unlock()

	if !initialized {
		return nil
	}
	if err := ort.DestroyEnvironment(); err != nil {
		return err
	}

	initialized = false
	return nil
}

// Session wraps an ONNX Runtime inference session
type Session struct {
	session   *ort.DynamicAdvancedSession
	modelPath string
}

// NewSession opens a model, preferring the CoreML execution provider and
// falling back to CPU where it is unavailable.
func NewSession(modelPath string, inputNames, outputNames []string, log logrus.FieldLogger) (*Session, error) {
	if !initialized {
		return nil, fmt.Errorf("ONNX Runtime not initialized, call Initialize() first")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()

	entry := log.WithField("model", modelPath)
	if err := options.AppendExecutionProviderCoreML(0); err != nil {
		entry.WithError(err).Debug("CoreML unavailable, using CPU")
	} else {
		entry.Debug("using CoreML execution provider")
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, outputNames, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create session for %s: %w", modelPath, err)
	}

	return &Session{session: session, modelPath: modelPath}, nil
}

// Run executes inference with the given inputs
func (s *Session) Run(inputs []ort.Value, outputs []ort.Value) error {
	return s.session.Run(inputs, outputs)
}

// Destroy releases session resources
func (s *Session) Destroy() error {
	if s.session != nil {
		return s.session.Destroy()
	}
	return nil
}

// NewEmptyTensor allocates a zeroed tensor for inference output
func NewEmptyTensor[T ort.TensorData](shape ...int64) (*ort.Tensor[T], error) {
	size := int64(1)
	for _, dim := range shape {
		size *= dim
	}
	return ort.NewTensor(ort.NewShape(shape...), make([]T, size))
}

// TensorInfo describes one model input or output
type TensorInfo struct {
	Name     string
	Shape    []int64
	DataType string
}

// ModelInfo lists the inputs and outputs declared by a model file
func ModelInfo(modelPath string) (inputs, outputs []TensorInfo, err error) {
	if !initialized {
		return nil, nil, fmt.Errorf("ONNX Runtime not initialized, call Initialize() first")
	}

	in, out, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read model info %s: %w", modelPath, err)
	}
	return toTensorInfo(in), toTensorInfo(out), nil
}

func toTensorInfo(infos []ort.InputOutputInfo) []TensorInfo {
	out := make([]TensorInfo, len(infos))
	for i, info := range infos {
		out[i] = TensorInfo{
			Name:     info.Name,
			Shape:    []int64(info.Dimensions),
			DataType: fmt.Sprint(info.DataType),
		}
	}
	return out
}
