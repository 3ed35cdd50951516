package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dudu/facemorph/internal/config"
	"github.com/dudu/facemorph/internal/detector"
	"github.com/dudu/facemorph/internal/locator"
	"github.com/dudu/facemorph/internal/logging"
)

var (
	cfg *config.Config
	log *logrus.Logger

	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "facemorph",
	Short: "Locate face landmarks and compute morph point sets",
	Long: `facemorph locates facial landmarks with an external or in-process detector
and computes the point sets a face morph needs: boundary anchor points,
averages over many faces and weighted blends between two faces.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.Log.Format = logFormat
		}
		log, err = logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $FACEMORPH_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	rootCmd.AddCommand(pointsCmd, averageCmd, blendCmd, annotateCmd, inspectCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// newDetector builds the configured detector backend. The returned close
// function is always safe to call.
func newDetector() (locator.Detector, func(), error) {
	switch cfg.Detector.Backend {
	case config.BackendONNX:
		l, err := detector.New(detector.Config{
			LibraryPath:       cfg.ONNX.Library,
			FaceModelPath:     cfg.ONNX.FaceModel,
			LandmarkModelPath: cfg.ONNX.LandmarkModel,
			DetectionSize:     cfg.ONNX.DetectionSize,
			ConfThreshold:     cfg.ONNX.ConfThreshold,
			NMSThreshold:      cfg.ONNX.NMSThreshold,
		}, log)
		if err != nil {
			return nil, func() {}, err
		}
		return l, func() {
			if err := l.Close(); err != nil {
				log.WithError(err).Warn("close detector")
			}
		}, nil
	default:
		d, err := locator.NewExecDetector(locator.ExecConfig{
			Executable: cfg.Detector.Executable,
			ModelPath:  cfg.Detector.Model,
			Timeout:    cfg.Detector.Timeout,
		}, log)
		return d, func() {}, err
	}
}
