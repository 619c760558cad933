package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/serialver-dev/serialver/internal/javaast"
)

type mockParser struct {
	lang string
	exts []string
}

func (m mockParser) Language() string {
	return m.lang
}

func (m mockParser) Extensions() []string {
	return m.exts
}

func (m mockParser) Parse(ctx context.Context, filename string, content []byte) (*javaast.CompilationUnit, error) {
	if string(content) == "broken" {
		return nil, errors.New("unparseable")
	}
	return javaast.NewCompilationUnit(filename, content, nil), nil
}

func TestRegistryGetParserForFile(t *testing.T) {
	r := NewRegistry()
	r.Register(mockParser{lang: "mock", exts: []string{".mock"}})

	p, ok := r.GetParserForFile("demo.MOCK")
	if !ok {
		t.Fatalf("expected parser for .MOCK extension")
	}
	if p.Language() != "mock" {
		t.Fatalf("expected language mock, got %s", p.Language())
	}
	if _, ok := r.GetParserForFile("demo.txt"); ok {
		t.Fatalf("did not expect a parser for .txt")
	}
}

func TestParseDirectoryRespectsIgnoreRules(t *testing.T) {
	root := t.TempDir()
	r := NewRegistry()
	r.Register(mockParser{lang: "mock", exts: []string{".mock"}})

	mustWriteFile(t, filepath.Join(root, "keep.mock"), "ok")
	mustWriteFile(t, filepath.Join(root, "skip", "ignored.mock"), "x")
	mustWriteFile(t, filepath.Join(root, "skip", "include.mock"), "y")
	mustWriteFile(t, filepath.Join(root, ".serialver", "hidden.mock"), "z")
	mustWriteFile(t, filepath.Join(root, "target", "classes", "gen.mock"), "z")

	result, err := r.ParseDirectory(context.Background(), root, []string{
		"skip/*",
		"!skip/include.mock",
	}, 2)
	if err != nil {
		t.Fatalf("ParseDirectory failed: %v", err)
	}
	defer result.Close()

	got := make([]string, 0, len(result.Units))
	for _, unit := range result.Units {
		got = append(got, unit.Path)
	}

	want := []string{"keep.mock", "skip/include.mock"}
	if len(got) != len(want) {
		t.Fatalf("expected %d parsed files, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if result.Units[0].Hash == "" {
		t.Fatalf("expected content hash to be recorded")
	}
}

func TestParseFilesReportsFailuresAsIssues(t *testing.T) {
	root := t.TempDir()
	r := NewRegistry()
	r.Register(mockParser{lang: "mock", exts: []string{".mock"}})

	mustWriteFile(t, filepath.Join(root, "a.mock"), "ok")
	mustWriteFile(t, filepath.Join(root, "b.mock"), "broken")

	result := r.ParseFiles(context.Background(), root, []string{"a.mock", "b.mock"}, 4)
	if len(result.Units) != 1 || result.Units[0].Path != "a.mock" {
		t.Fatalf("expected only a.mock to parse, got %d units", len(result.Units))
	}
	if len(result.Issues) != 1 {
		t.Fatalf("expected one issue, got %v", result.Issues)
	}
	issue := result.Issues[0]
	if issue.File != "b.mock" || issue.Severity != "error" || issue.Language != "mock" {
		t.Fatalf("unexpected issue %+v", issue)
	}
}

func TestParseFilesReportsProgress(t *testing.T) {
	root := t.TempDir()
	r := NewRegistry()
	r.Register(mockParser{lang: "mock", exts: []string{".mock"}})

	mustWriteFile(t, filepath.Join(root, "a.mock"), "ok")
	mustWriteFile(t, filepath.Join(root, "b.mock"), "ok")

	seen := make(map[string]bool)
	last := 0
	r.Progress = func(path string, done int) {
		seen[path] = true
		if done > last {
			last = done
		}
	}

	result := r.ParseFiles(context.Background(), root, []string{"a.mock", "b.mock"}, 2)
	defer result.Close()
	if len(seen) != 2 || last != 2 {
		t.Fatalf("expected progress for both files, got %v (last=%d)", seen, last)
	}
}

func TestParseFilesReportsCancellation(t *testing.T) {
	root := t.TempDir()
	r := NewRegistry()
	r.Register(mockParser{lang: "mock", exts: []string{".mock"}})
	mustWriteFile(t, filepath.Join(root, "a.mock"), "ok")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := r.ParseFiles(ctx, root, []string{"a.mock"}, 1)
	defer result.Close()
	if !errors.Is(result.Err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", result.Err)
	}
	if len(result.Units) != 0 {
		t.Fatalf("expected no units after cancellation, got %d", len(result.Units))
	}

	if _, err := r.ParseDirectory(ctx, root, nil, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected ParseDirectory to return context.Canceled, got %v", err)
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
