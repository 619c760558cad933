package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

type RunSummary struct {
	Mode         string   `json:"mode"`
	RootPath     string   `json:"root_path"`
	CacheDir     string   `json:"cache_dir,omitempty"`
	Target       int      `json:"target"`
	Fresh        bool     `json:"fresh"`
	Scanned      int      `json:"scanned"`
	Parsed       int      `json:"parsed"`
	Reused       int      `json:"reused"`
	Changed      int      `json:"changed"`
	Deleted      int      `json:"deleted"`
	Classes      int      `json:"classes"`
	Missing      int      `json:"missing"`
	Match        int      `json:"match"`
	Custom       int      `json:"custom"`
	DurationMS   int64    `json:"duration_ms"`
	ChangedFiles []string `json:"changed_files,omitempty"`
	DeletedFiles []string `json:"deleted_files,omitempty"`
}

func PrintRunSummary(w io.Writer, summary RunSummary, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summary)
	}

	if summary.Mode == "status" {
		state := "stale"
		if summary.Fresh {
			state = "fresh"
		}
		fmt.Fprintf(w, "status: cache=%s target=%d scanned=%d changed=%d deleted=%d\n",
			state, summary.Target, summary.Scanned, summary.Changed, summary.Deleted)
	} else {
		fmt.Fprintf(w,
			"%s: scanned=%d parsed=%d reused=%d classes=%d missing=%d match=%d custom=%d duration=%dms\n",
			summary.Mode,
			summary.Scanned,
			summary.Parsed,
			summary.Reused,
			summary.Classes,
			summary.Missing,
			summary.Match,
			summary.Custom,
			summary.DurationMS,
		)
	}

	if len(summary.ChangedFiles) > 0 {
		fmt.Fprintf(w, "changed files (%d): %s\n", len(summary.ChangedFiles), SummarizePaths(summary.ChangedFiles, 8))
	}
	if len(summary.DeletedFiles) > 0 {
		fmt.Fprintf(w, "deleted files (%d): %s\n", len(summary.DeletedFiles), SummarizePaths(summary.DeletedFiles, 8))
	}

	return nil
}

func SummarizePaths(paths []string, max int) string {
	if len(paths) <= max {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(paths[:max], ", "), len(paths)-max)
}
