package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tsawler/go-metal/checkpoints"
)

// metalImport reports whether go-metal can import the model and lists its
// layers. go-metal supports a small operator set, so failure is common.
func metalImport(cmd *cobra.Command, modelPath string) error {
	importer := checkpoints.NewONNXImporter()
	checkpoint, err := importer.ImportFromONNX(modelPath)
	if err != nil {
		return fmt.Errorf("go-metal import failed: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "go-metal: %d layers, %d weight tensors\n",
		len(checkpoint.ModelSpec.Layers), len(checkpoint.Weights))
	for i, layer := range checkpoint.ModelSpec.Layers {
		fmt.Fprintf(w, "  %d: %s (%v)\n", i+1, layer.Name, layer.Type)
	}
	return nil
}
