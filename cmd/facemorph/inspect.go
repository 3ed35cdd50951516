package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dudu/facemorph/internal/inference"
)

var inspectMetal bool

var inspectCmd = &cobra.Command{
	Use:   "inspect MODEL.onnx",
	Short: "Show the inputs and outputs of an ONNX model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modelPath := args[0]
		if _, err := os.Stat(modelPath); err != nil {
			return err
		}

		if err := inference.Initialize(cfg.ONNX.Library); err != nil {
			return err
		}
		defer inference.Shutdown()

		inputs, outputs, err := inference.ModelInfo(modelPath)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Inputs (%d):\n", len(inputs))
		for _, info := range inputs {
			fmt.Fprintf(w, "  %s: shape=%v, type=%s\n", info.Name, info.Shape, info.DataType)
		}
		fmt.Fprintf(w, "Outputs (%d):\n", len(outputs))
		for _, info := range outputs {
			fmt.Fprintf(w, "  %s: shape=%v, type=%s\n", info.Name, info.Shape, info.DataType)
		}

		if inspectMetal {
			return metalImport(cmd, modelPath)
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectMetal, "metal", false, "also try importing the model with go-metal")
}
