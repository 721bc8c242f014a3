package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func testFS(t *testing.T) (*FS, string) {
	t.Helper()
	dir := t.TempDir()
	f, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return f, dir
}

func TestNewFS_MissingRoot(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("missing root should fail")
	}
}

func TestWriteReadDelete(t *testing.T) {
	f, _ := testFS(t)
	if err := f.Write("daily/2025-06-10.md", []byte("# note")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := f.Read("daily/2025-06-10.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "# note" {
		t.Errorf("data = %q", data)
	}
	if err := f.Delete("daily/2025-06-10.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.Read("daily/2025-06-10.md"); err == nil {
		t.Error("read after delete should fail")
	}
}

func TestList(t *testing.T) {
	f, dir := testFS(t)
	_ = f.Write("weekly/2025-W24.md", []byte("a"))
	_ = f.Write("2025-06-10.md", []byte("b"))
	if err := os.WriteFile(filepath.Join(dir, "skip.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	infos, err := f.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("len = %d, want 2 (only .md files)", len(infos))
	}
	for _, fi := range infos {
		if fi.Checksum == "" {
			t.Errorf("missing checksum for %s", fi.Path)
		}
	}
}

func TestTraversalRejected(t *testing.T) {
	f, _ := testFS(t)
	if _, err := f.Read("../outside.md"); err == nil {
		t.Error("traversal read should fail")
	}
	if err := f.Write("../outside.md", []byte("x")); err == nil {
		t.Error("traversal write should fail")
	}
	if _, err := f.Read("/etc/passwd"); err == nil {
		t.Error("absolute read should fail")
	}
}
