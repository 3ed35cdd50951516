//go:build !darwin

package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func metalImport(*cobra.Command, string) error {
	return errors.New("go-metal import is only available on macOS")
}
