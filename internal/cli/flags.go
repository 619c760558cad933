package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/serialver-dev/serialver/internal/output"
)

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func OptionalBoolFlag(cmd *cobra.Command, name string) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return false, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

// ParseOutputFormat reads output.format, fed by --format, the environment
// or the config file.
func (a *App) ParseOutputFormat() (output.Format, error) {
	return output.ParseFormat(a.cfg.GetString(formatConfigKey))
}

// ParseTarget reads the synthetic member profile.
func (a *App) ParseTarget() (int, error) {
	target := a.cfg.GetInt(targetConfigKey)
	if target < 0 {
		return 0, fmt.Errorf("invalid target %d: must be zero or a Java release number", target)
	}
	return target, nil
}

func (a *App) parallelism() int {
	if n := a.cfg.GetInt(runParallelConfigKey); n > 0 {
		return n
	}
	return 1
}
