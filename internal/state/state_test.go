package state

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/serialver-dev/serialver/internal/scan"
)

func TestChangedAndDeletedFiles(t *testing.T) {
	s := NewState()
	s.SetFileHash("A.java", "a1")
	s.SetFileHash("B.java", "b1")
	s.SetFileHash("C.java", "c1")

	current := map[string]string{
		"A.java": "a1",
		"B.java": "b2",
		"D.java": "d1",
	}
	changed := s.ChangedFiles(current)
	if !reflect.DeepEqual(changed, []string{"B.java", "D.java"}) {
		t.Fatalf("unexpected changed files %v", changed)
	}

	deleted := s.DeletedFiles(current)
	if !reflect.DeepEqual(deleted, []string{"C.java"}) {
		t.Fatalf("unexpected deleted files %v", deleted)
	}
}

func TestFingerprintCoversEngineAndTarget(t *testing.T) {
	hashes := map[string]string{"A.java": "a1", "B.java": "b1"}
	base := Fingerprint(hashes, "v1", 0)

	if base != Fingerprint(map[string]string{"B.java": "b1", "A.java": "a1"}, "v1", 0) {
		t.Fatalf("expected fingerprint to be independent of map order")
	}
	if base == Fingerprint(hashes, "v2", 0) {
		t.Fatalf("expected engine version to change the fingerprint")
	}
	if base == Fingerprint(hashes, "v1", 11) {
		t.Fatalf("expected target to change the fingerprint")
	}
	if base == Fingerprint(map[string]string{"A.java": "a2", "B.java": "b1"}, "v1", 0) {
		t.Fatalf("expected file hashes to change the fingerprint")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir() + "/cache"
	hashes := map[string]string{"p/A.java": "a1", "p/Empty.java": "e1"}
	declared := int64(7)
	results := []scan.Result{
		{File: "p/A.java", Class: "p.A$B", Line: 4, Computed: 7, Declared: &declared, Status: scan.StatusMatch},
		{File: "p/A.java", Class: "p.A", Line: 2, Computed: -3, Status: scan.StatusMissing},
	}

	fp := Fingerprint(hashes, "v1", 5)
	s := NewState()
	s.Record(fp, "v1", 5, hashes, results)
	if written, err := s.Save(dir); err != nil || !written {
		t.Fatalf("save failed: written=%v err=%v", written, err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !loaded.Fresh(fp) {
		t.Fatalf("expected loaded state to be fresh for %s", fp)
	}
	if loaded.Target != 5 || loaded.EngineVersion != "v1" {
		t.Fatalf("unexpected target/engine %d/%s", loaded.Target, loaded.EngineVersion)
	}
	if _, ok := loaded.GetFileHash("p/Empty.java"); !ok {
		t.Fatalf("expected files without results to be tracked")
	}

	got := loaded.Results()
	if len(got) != 2 || got[0].Class != "p.A" || got[1].Class != "p.A$B" {
		t.Fatalf("unexpected results %+v", got)
	}
	if got[1].Declared == nil || *got[1].Declared != 7 {
		t.Fatalf("expected declared value to survive, got %+v", got[1])
	}
}

func TestSaveSkipsUnchangedState(t *testing.T) {
	dir := t.TempDir()
	hashes := map[string]string{"p/A.java": "a1"}
	results := []scan.Result{{File: "p/A.java", Class: "p.A", Line: 2, Computed: 11, Status: scan.StatusMissing}}
	fp := Fingerprint(hashes, "v1", 0)

	s := NewState()
	s.Record(fp, "v1", 0, hashes, results)
	if written, err := s.Save(dir); err != nil || !written {
		t.Fatalf("expected first save to write, written=%v err=%v", written, err)
	}
	path := filepath.Join(dir, StateFile)
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	loaded.Record(fp, "v1", 0, hashes, results)
	written, err := loaded.Save(dir)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if written {
		t.Fatalf("expected identical state not to be rewritten")
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("expected state file to be untouched")
	}

	hashes["p/A.java"] = "a2"
	fp2 := Fingerprint(hashes, "v1", 0)
	loaded.Record(fp2, "v1", 0, hashes, results)
	if written, err := loaded.Save(dir); err != nil || !written {
		t.Fatalf("expected changed state to be written, written=%v err=%v", written, err)
	}
	reloaded, err := Load(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !reloaded.Fresh(fp2) {
		t.Fatalf("expected new fingerprint to be persisted")
	}
}

func TestLoadMissingStateIsEmpty(t *testing.T) {
	s, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(s.Files) != 0 || s.Fresh("") {
		t.Fatalf("expected empty, stale state, got %+v", s)
	}
}

func TestMigrateStateDropsLegacyFingerprint(t *testing.T) {
	s := &State{
		Version:     "1",
		Fingerprint: "abc",
	}

	migrateState(s)

	if s.Version != CurrentStateVersion {
		t.Fatalf("expected version %q, got %q", CurrentStateVersion, s.Version)
	}
	if s.Fresh("abc") {
		t.Fatalf("expected legacy state to be stale")
	}
	if s.Files == nil {
		t.Fatalf("expected files map to be initialized")
	}
}
