package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"time"

	"github.com/serialver-dev/serialver/internal/fileutil"
	"github.com/serialver-dev/serialver/internal/scan"
)

const (
	StateFile            = ".state.json"
	CurrentStateVersion  = "2"
	CurrentParserVersion = "tree-sitter-java-v1"
)

// FileState tracks the state of a single file
type FileState struct {
	Hash      string        `json:"hash"`
	Results   []scan.Result `json:"results,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// State caches the scan results of a source tree. Identifiers depend on the
// whole compilation scope, so results are only reused while Fingerprint
// still matches.
type State struct {
	Version       string               `json:"version"`
	ParserVersion string               `json:"parser_version,omitempty"`
	EngineVersion string               `json:"engine_version,omitempty"`
	Target        int                  `json:"target"`
	Fingerprint   string               `json:"fingerprint,omitempty"`
	UpdatedAt     time.Time            `json:"updated_at"`
	Files         map[string]FileState `json:"files"`
}

// NewState creates a new empty state
func NewState() *State {
	return &State{
		Version:       CurrentStateVersion,
		ParserVersion: CurrentParserVersion,
		Files:         make(map[string]FileState),
	}
}

// Load reads state from the cache directory. A missing file yields an empty state.
func Load(cacheDir string) (*State, error) {
	path := filepath.Join(cacheDir, StateFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	migrateState(&state)

	return &state, nil
}

// Save writes state to the cache directory, creating it when needed. The file
// is left untouched when it already holds the same state; the returned bool
// reports whether it was written.
func (s *State) Save(cacheDir string) (bool, error) {
	if s.Version == "" {
		s.Version = CurrentStateVersion
	}
	if s.ParserVersion == "" {
		s.ParserVersion = CurrentParserVersion
	}
	if s.Files == nil {
		s.Files = make(map[string]FileState)
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now()
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return false, err
	}
	return fileutil.WriteIfChanged(filepath.Join(cacheDir, StateFile), data)
}

// Fingerprint digests every file hash together with the engine version and
// target, in path order.
func Fingerprint(hashes map[string]string, engineVersion string, target int) string {
	paths := make([]string, 0, len(hashes))
	for path := range hashes {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d\x00", engineVersion, target)
	for _, path := range paths {
		fmt.Fprintf(h, "%s\x00%s\x00", path, hashes[path])
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Fresh reports whether the cached results were produced for fingerprint.
func (s *State) Fresh(fingerprint string) bool {
	return s.Fingerprint != "" && s.Fingerprint == fingerprint && s.ParserVersion == CurrentParserVersion
}

// Record replaces the cached results. Files with no applicable class keep an
// entry so their hash is tracked. Timestamps only move for entries whose
// hash or results changed.
func (s *State) Record(fingerprint, engineVersion string, target int, hashes map[string]string, results []scan.Result) {
	byFile := make(map[string][]scan.Result)
	for _, r := range results {
		byFile[r.File] = append(byFile[r.File], r)
	}

	now := time.Now()
	changed := fingerprint != s.Fingerprint || len(hashes) != len(s.Files)
	files := make(map[string]FileState, len(hashes))
	for file, hash := range hashes {
		fs := FileState{Hash: hash, Results: byFile[file], UpdatedAt: now}
		if prev, ok := s.Files[file]; ok && prev.Hash == hash && reflect.DeepEqual(prev.Results, fs.Results) {
			fs.UpdatedAt = prev.UpdatedAt
		} else {
			changed = true
		}
		files[file] = fs
	}
	s.Files = files
	s.Fingerprint = fingerprint
	s.EngineVersion = engineVersion
	s.Target = target
	s.ParserVersion = CurrentParserVersion
	if changed {
		s.UpdatedAt = now
	}
}

// Results returns every cached result in file, line and class order.
func (s *State) Results() []scan.Result {
	out := make([]scan.Result, 0)
	for _, fs := range s.Files {
		out = append(out, fs.Results...)
	}
	scan.Sort(out)
	return out
}

// SetFileHash updates the hash for a file
func (s *State) SetFileHash(file, hash string) {
	s.Files[file] = FileState{
		Hash:      hash,
		UpdatedAt: time.Now(),
	}
}

// GetFileHash returns the stored hash for a file
func (s *State) GetFileHash(file string) (string, bool) {
	fs, ok := s.Files[file]
	if !ok {
		return "", false
	}
	return fs.Hash, true
}

// HasChanged returns true if the file hash differs from stored
func (s *State) HasChanged(file, currentHash string) bool {
	storedHash, ok := s.GetFileHash(file)
	if !ok {
		return true // New file
	}
	return storedHash != currentHash
}

// ChangedFiles returns files that have changed based on provided hashes
func (s *State) ChangedFiles(currentHashes map[string]string) []string {
	changed := make([]string, 0)

	for file, hash := range currentHashes {
		if s.HasChanged(file, hash) {
			changed = append(changed, file)
		}
	}

	sort.Strings(changed)
	return changed
}

// DeletedFiles returns files that no longer exist
func (s *State) DeletedFiles(currentHashes map[string]string) []string {
	deleted := make([]string, 0)

	for file := range s.Files {
		if _, ok := currentHashes[file]; !ok {
			deleted = append(deleted, file)
		}
	}

	sort.Strings(deleted)
	return deleted
}

func migrateState(s *State) {
	if s.Files == nil {
		s.Files = make(map[string]FileState)
	}

	switch s.Version {
	case "", "1":
		// Version 1 predates fingerprints; its results cannot be trusted.
		s.Version = CurrentStateVersion
		s.Fingerprint = ""
	case CurrentStateVersion:
		// no-op
	default:
		// Keep unknown versions untouched but ensure required maps are initialized.
	}
}
