package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

// RunInit writes the effective configuration to serialver.yaml in the
// working directory. An existing file is left untouched.
func (a *App) RunInit(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}

	targetPath := filepath.Join(rootPath, configFileName)
	if err := a.cfg.SafeWriteConfigAs(targetPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", targetPath)
	return nil
}
