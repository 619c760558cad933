package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/serialver-dev/serialver/internal/fileutil"
	"github.com/serialver-dev/serialver/internal/languages"
	"github.com/serialver-dev/serialver/internal/output"
	"github.com/serialver-dev/serialver/internal/resolve"
	"github.com/serialver-dev/serialver/internal/scan"
	"github.com/serialver-dev/serialver/internal/state"
	"github.com/serialver-dev/serialver/internal/suid"
)

// ErrMissingIdentifiers is returned by check when a serializable class does
// not declare serialVersionUID.
var ErrMissingIdentifiers = errors.New("serializable classes without serialVersionUID")

func (a *App) RunScan(cmd *cobra.Command, args []string) error {
	_, err := a.runScan(cmd, args, "scan")
	return err
}

func (a *App) RunCheck(cmd *cobra.Command, args []string) error {
	results, err := a.runScan(cmd, args, "check")
	if err != nil {
		return err
	}

	missing := scan.Missing(results)
	if len(missing) == 0 {
		return nil
	}
	stderr := cmd.ErrOrStderr()
	for _, r := range missing {
		fmt.Fprintf(stderr, "[missing] %s:%d %s: %s\n", r.File, r.Line, r.Class, r.Declaration)
	}
	return fmt.Errorf("%w: %d class(es)", ErrMissingIdentifiers, len(missing))
}

func (a *App) runScan(cmd *cobra.Command, args []string, mode string) ([]scan.Result, error) {
	rootPath, err := resolveRoot(args)
	if err != nil {
		return nil, err
	}
	format, err := a.ParseOutputFormat()
	if err != nil {
		return nil, err
	}

	results, summary, err := a.ScanProject(cmd.Context(), rootPath, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	summary.Mode = mode

	if err := output.WriteResults(cmd.OutOrStdout(), format, results); err != nil {
		return nil, fmt.Errorf("failed to write results: %w", err)
	}
	if format == output.FormatText {
		if err := PrintRunSummary(cmd.ErrOrStderr(), summary, false); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// ScanProject computes the results of every applicable class under
// rootPath. Cached results are reused while the fingerprint over all file
// hashes, the engine version and the target is unchanged.
func (a *App) ScanProject(ctx context.Context, rootPath string, stderr io.Writer) ([]scan.Result, RunSummary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	target, err := a.ParseTarget()
	if err != nil {
		return nil, RunSummary{}, err
	}
	ignoreRules, err := a.ignoreRules(rootPath)
	if err != nil {
		return nil, RunSummary{}, err
	}

	registry := languages.NewDefaultRegistry()
	files, walkIssues, err := registry.CollectFiles(rootPath, ignoreRules)
	if err != nil {
		return nil, RunSummary{}, fmt.Errorf("failed to collect source files: %w", err)
	}
	hashes, err := fileutil.ScanFileHashes(rootPath, files)
	if err != nil {
		return nil, RunSummary{}, fmt.Errorf("failed to hash source files: %w", err)
	}

	cacheDir := a.cacheDir(rootPath)
	noCache := a.cfg.GetBool(noCacheConfigKey)
	st, err := a.loadState(cacheDir, stderr)
	if err != nil {
		return nil, RunSummary{}, err
	}
	fingerprint := state.Fingerprint(hashes, suid.EngineVersion, target)

	changed := st.ChangedFiles(hashes)
	deleted := st.DeletedFiles(hashes)
	summary := RunSummary{
		RootPath:     rootPath,
		CacheDir:     cacheDir,
		Target:       target,
		Scanned:      len(files),
		Changed:      len(changed),
		Deleted:      len(deleted),
		ChangedFiles: changed,
		DeletedFiles: deleted,
	}

	ReportParseIssues(stderr, a.logger, walkIssues)

	var results []scan.Result
	if !noCache && st.Fresh(fingerprint) {
		results = st.Results()
		summary.Fresh = true
		summary.Reused = len(files)
		a.logger.Info("reused cached results", "root", rootPath, "files", len(files), "classes", len(results))
	} else {
		progress := newParseProgressReporter(stderr, "scan", len(files))
		registry.Progress = progress.Update
		parsed := registry.ParseFiles(ctx, rootPath, files, a.parallelism())
		defer parsed.Close()
		progress.Done(len(parsed.Units))
		if parsed.Err != nil {
			return nil, RunSummary{}, fmt.Errorf("failed to parse sources: %w", parsed.Err)
		}
		ReportParseIssues(stderr, a.logger, parsed.Issues)

		engine := suid.New(resolve.NewIndex(parsed.Units...), suid.Options{Target: target}, a.logger)
		results, err = scan.Run(ctx, parsed.Units, engine, a.parallelism())
		if err != nil {
			return nil, RunSummary{}, err
		}
		summary.Parsed = len(parsed.Units)

		if !noCache {
			st.Record(fingerprint, suid.EngineVersion, target, hashes, results)
			written, err := st.Save(cacheDir)
			if err != nil {
				return nil, RunSummary{}, fmt.Errorf("failed to persist state: %w", err)
			}
			a.logger.Debug("saved state", "dir", cacheDir, "written", written)
		}
		a.logger.Info("scanned", "root", rootPath, "files", len(files), "parsed", len(parsed.Units), "classes", len(results))
	}

	counts := scan.Counts(results)
	summary.Classes = len(results)
	summary.Missing = counts[scan.StatusMissing]
	summary.Match = counts[scan.StatusMatch]
	summary.Custom = counts[scan.StatusCustom]
	summary.DurationMS = time.Since(start).Milliseconds()
	return results, summary, nil
}
