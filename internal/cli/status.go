package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/serialver-dev/serialver/internal/fileutil"
	"github.com/serialver-dev/serialver/internal/languages"
	"github.com/serialver-dev/serialver/internal/state"
	"github.com/serialver-dev/serialver/internal/suid"
)

func (a *App) RunStatus(cmd *cobra.Command, args []string) error {
	start := time.Now()
	rootPath, err := resolveRoot(args)
	if err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}
	target, err := a.ParseTarget()
	if err != nil {
		return err
	}

	ignoreRules, err := a.ignoreRules(rootPath)
	if err != nil {
		return err
	}
	registry := languages.NewDefaultRegistry()
	files, _, err := registry.CollectFiles(rootPath, ignoreRules)
	if err != nil {
		return fmt.Errorf("failed to collect source files: %w", err)
	}
	currentHashes, err := fileutil.ScanFileHashes(rootPath, files)
	if err != nil {
		return fmt.Errorf("failed to scan files: %w", err)
	}

	cacheDir := a.cacheDir(rootPath)
	st, err := a.loadState(cacheDir, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	changed := st.ChangedFiles(currentHashes)
	deleted := st.DeletedFiles(currentHashes)
	fresh := st.Fresh(state.Fingerprint(currentHashes, suid.EngineVersion, target))

	summary := RunSummary{
		Mode:         "status",
		RootPath:     rootPath,
		CacheDir:     cacheDir,
		Target:       target,
		Fresh:        fresh,
		Scanned:      len(currentHashes),
		Reused:       MaxInt(len(currentHashes)-len(changed), 0),
		Changed:      len(changed),
		Deleted:      len(deleted),
		DurationMS:   time.Since(start).Milliseconds(),
		ChangedFiles: changed,
		DeletedFiles: deleted,
	}
	if fresh {
		results := st.Results()
		summary.Classes = len(results)
	}

	return PrintRunSummary(cmd.OutOrStdout(), summary, asJSON)
}

func MaxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
