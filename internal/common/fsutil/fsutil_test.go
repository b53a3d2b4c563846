package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	if got, err := ExpandHome("/tmp"); err != nil || got != "/tmp" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if got, err := ExpandHome(""); err != nil || got != "" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if p, err := ExpandHome("~"); err != nil || p != home {
		t.Fatalf("expected %q, got %q (err=%v)", home, p, err)
	}
	exp, err := ExpandHome("~/models")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if exp != filepath.Join(home, "models") {
		t.Fatalf("unexpected expanded path: %q", exp)
	}
}

func TestResolveBeside(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	desc := filepath.Join("/srv", "models", "tiny.yaml")

	cases := []struct{ in, want string }{
		{"corpus.txt", filepath.Join("/srv", "models", "corpus.txt")},
		{"data/c.txt", filepath.Join("/srv", "models", "data", "c.txt")},
		{"/abs/c.txt", "/abs/c.txt"},
		{"~/c.txt", filepath.Join(home, "c.txt")},
		{"", ""},
	}
	for _, c := range cases {
		got, err := ResolveBeside(desc, c.in)
		if err != nil || got != c.want {
			t.Fatalf("ResolveBeside(%q) = %q, %v; want %q", c.in, got, err, c.want)
		}
	}
	if got, _ := ResolveBeside("", "rel.txt"); got != "rel.txt" {
		t.Fatalf("expected unchanged relative path without a base, got %q", got)
	}
}

func TestPathExists(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "f")
	if PathExists(p) {
		t.Fatalf("%s should not exist yet", p)
	}
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !PathExists(p) || !PathExists(dir) {
		t.Fatalf("expected paths to exist")
	}
}
