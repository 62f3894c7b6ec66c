package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeGo(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLintFile(t *testing.T) {
	cases := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "marked",
			body: "package q\n\nconst QOne = `--sql 0b5c7f0e-3a4e-4b53-9d21-6f1c2a7b8e90\nselect 1;\n`\n",
		},
		{
			name: "unmarked",
			body: "package q\n\nconst QOne = `\nselect id from categories;\n`\n",
			want: []string{"missing or invalid"},
		},
		{
			name: "bad uuid",
			body: "package q\n\nconst QOne = `--sql not-a-uuid\nselect 1;\n`\n",
			want: []string{"missing or invalid"},
		},
		{
			name: "prose is ignored",
			body: "package q\n\nconst hint = \"poster with bold colors, select a warm palette\"\n",
		},
		{
			name: "duplicate marker",
			body: "package q\n\nconst (\n\tQOne = `--sql 0b5c7f0e-3a4e-4b53-9d21-6f1c2a7b8e90\nselect 1;\n`\n\tQTwo = `--sql 0b5c7f0e-3a4e-4b53-9d21-6f1c2a7b8e90\nselect 2;\n`\n)\n",
			want: []string{"marker reused"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeGo(t, t.TempDir(), "q.go", tc.body)
			l := newLinter()
			if err := l.lintFile(path); err != nil {
				t.Fatalf("lintFile: %v", err)
			}
			if len(l.violations) != len(tc.want) {
				t.Fatalf("violations = %#v, want %d", l.violations, len(tc.want))
			}
			for i, want := range tc.want {
				if !strings.Contains(l.violations[i].message, want) {
					t.Fatalf("violation %d = %q, want %q", i, l.violations[i].message, want)
				}
			}
		})
	}
}

func TestLintPathFindsDuplicatesAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	q := "package q\n\nconst %s = `--sql 11111111-2222-4333-8444-555555555555\nupdate t set x = 1;\n`\n"
	writeGo(t, dir, "a.go", strings.Replace(q, "%s", "QA", 1))
	writeGo(t, dir, "b.go", strings.Replace(q, "%s", "QB", 1))
	writeGo(t, dir, "b_test.go", strings.Replace(q, "%s", "QC", 1))

	l := newLinter()
	if err := l.lintPath(dir); err != nil {
		t.Fatalf("lintPath: %v", err)
	}
	if len(l.violations) != 1 {
		t.Fatalf("violations = %#v, want 1", l.violations)
	}
	if l.violations[0].name != "QB" {
		t.Fatalf("violation name = %q, want QB", l.violations[0].name)
	}
}
