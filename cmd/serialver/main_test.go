package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/serialver-dev/serialver/internal/cli"
	"github.com/serialver-dev/serialver/internal/scan"
)

func TestScanThenCheckFlow(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "src", "shop", "Order.java"), `package shop;

import java.io.Serializable;
import java.util.ArrayList;
import java.util.List;

public class Order implements Serializable {
    private final List<String> lines = new ArrayList<>();
    private transient int cachedTotal;

    public void add(String line) {
        lines.add(line);
    }

    private static class Line implements Serializable {
        private String sku;
    }
}
`)
	mustWriteFile(t, filepath.Join(root, "src", "shop", "Money.java"), `package shop;

public class Money extends Number {
    private static final long serialVersionUID = 1L;
    public int intValue() { return 0; }
    public long longValue() { return 0; }
    public float floatValue() { return 0; }
    public double doubleValue() { return 0; }
}
`)

	stdout, _, err := execute(t, "scan", root, "--format", "json", "--no-cache")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	var results []scan.Result
	if err := json.Unmarshal([]byte(stdout), &results); err != nil {
		t.Fatalf("failed to decode %q: %v", stdout, err)
	}

	got := make(map[string]scan.Status, len(results))
	for _, r := range results {
		got[r.Class] = r.Status
	}
	want := map[string]scan.Status{
		"shop.Order":      scan.StatusMissing,
		"shop.Order$Line": scan.StatusMissing,
		"shop.Money":      scan.StatusCustom,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for class, status := range want {
		if got[class] != status {
			t.Fatalf("expected %s to be %s, got %v", class, status, got)
		}
	}

	_, _, err = execute(t, "check", root, "--format", "json", "--no-cache")
	if !errors.Is(err, cli.ErrMissingIdentifiers) {
		t.Fatalf("expected missing identifiers, got %v", err)
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(stdout, "serialver "+version) {
		t.Fatalf("unexpected version output %q", stdout)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCommand(version)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--log-file", filepath.Join(t.TempDir(), "serialver.log")))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
}
