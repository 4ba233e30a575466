package storage

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/modsync/pkg/errors"
)

func TestArchives(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Mods")
	a, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	if a.Has("ruins") {
		t.Fatal("empty store reports archive")
	}
	if err := a.Write("ruins", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := a.Write("ruins", []byte("v2")); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, "ruins.zip"))
	if string(data) != "v2" {
		t.Errorf("archive = %q, want v2", data)
	}
	if !a.Has("ruins") {
		t.Error("Has(ruins) = false")
	}

	if err := a.Remove("ruins"); err != nil {
		t.Fatal(err)
	}
	if a.Has("ruins") {
		t.Error("archive still present after Remove")
	}
	if err := a.Remove("ruins"); err != nil {
		t.Errorf("removing missing archive: %v", err)
	}
}

func TestArchivesList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.zip", "a.zip", "notes.txt", ".partial.zip"} {
		os.WriteFile(filepath.Join(dir, name), nil, 0o644)
	}
	os.Mkdir(filepath.Join(dir, "sub.zip"), 0o755)

	a, _ := Open(dir)
	ids, err := a.List()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"a", "b"}; !slices.Equal(ids, want) {
		t.Errorf("List() = %v, want %v", ids, want)
	}
}

func TestArchivesRejectTraversal(t *testing.T) {
	a, _ := Open(t.TempDir())
	for _, id := range []string{"", "..", "../etc/passwd", `a\b`} {
		if err := a.Write(id, []byte("x")); !errors.Is(err, errors.ErrCodeInvalidPackage) {
			t.Errorf("Write(%q) = %v, want INVALID_PACKAGE", id, err)
		}
	}
}

func TestOpenRequiresDir(t *testing.T) {
	if _, err := Open(""); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Open(\"\") = %v", err)
	}
}
