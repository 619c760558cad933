package ignore

import "testing"

func TestMatcher_DefaultAndUserOverrides(t *testing.T) {
	m := NewMatcher([]string{
		"generated/**",
		"!generated/keep/Model.java",
		"*Test.java",
	})

	cases := []struct {
		path    string
		isDir   bool
		ignored bool
	}{
		{path: ".git/config", isDir: false, ignored: true},
		{path: ".serialver/.state.json", isDir: false, ignored: true},
		{path: "target/classes/Foo.java", isDir: false, ignored: true},
		{path: "generated/lib/A.java", isDir: false, ignored: true},
		{path: "generated/keep/Model.java", isDir: false, ignored: false},
		{path: "src/test/java/FooTest.java", isDir: false, ignored: true},
		{path: "src/main/java/Foo.java", isDir: false, ignored: false},
	}

	for _, tc := range cases {
		got := m.ShouldIgnore(tc.path, tc.isDir)
		if got != tc.ignored {
			t.Fatalf("path %s: expected ignored=%v, got %v", tc.path, tc.ignored, got)
		}
	}
}

func TestMatcher_NegatedDirectoryRule(t *testing.T) {
	m := NewMatcher([]string{
		"legacy/",
		"!legacy/api/",
	})

	if !m.ShouldIgnore("legacy/impl/Old.java", false) {
		t.Fatalf("expected legacy/impl/Old.java to be ignored")
	}
	if m.ShouldIgnore("legacy/api/Contract.java", false) {
		t.Fatalf("expected legacy/api/Contract.java to be included")
	}
}

func TestMatcher_AnchoredRule(t *testing.T) {
	m := NewMatcher([]string{"/samples"})

	if !m.ShouldIgnore("samples", true) {
		t.Fatalf("expected root samples dir to be ignored")
	}
	if m.ShouldIgnore("src/samples", true) {
		t.Fatalf("expected nested samples dir to be kept")
	}
}

func TestMatcher_DirectoryRulesNeedDirectories(t *testing.T) {
	m := NewMatcher([]string{"# generated code", "gen/", "", "!build/"})

	if !m.ShouldIgnore("src/gen", true) {
		t.Fatalf("expected nested gen dir to be ignored")
	}
	if m.ShouldIgnore("src/gen", false) {
		t.Fatalf("expected a file named gen to be kept")
	}
	if m.ShouldIgnore("build", true) {
		t.Fatalf("expected negation to re-include the default build dir")
	}
	if !m.ShouldIgnore("target", true) {
		t.Fatalf("expected default target dir to stay ignored")
	}
	if m.ShouldIgnore(".", true) || m.ShouldIgnore("", true) {
		t.Fatalf("expected the walk root never to be ignored")
	}
}
