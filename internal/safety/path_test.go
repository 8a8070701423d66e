package safety

import (
	"strings"
	"testing"
)

func TestEnsureUnderRoot(t *testing.T) {
	root := t.TempDir()
	if _, err := EnsureUnderRoot(root, root+"/child/file.txt"); err != nil {
		t.Fatalf("EnsureUnderRoot failed for child path: %v", err)
	}
	if _, err := EnsureUnderRoot(root, root+"/../escape"); err == nil {
		t.Fatal("expected escape path to fail")
	}
}

func TestArchivePath(t *testing.T) {
	dest := t.TempDir()

	ok, err := ArchivePath(dest, "app.2024-01-01.log.gz")
	if err != nil {
		t.Fatalf("ArchivePath returned error: %v", err)
	}
	if !strings.HasPrefix(ok, dest) {
		t.Fatalf("path %q is not under %q", ok, dest)
	}

	for _, name := range []string{"", ".", ".."} {
		if _, err := ArchivePath(dest, name); err == nil {
			t.Errorf("expected %q to be rejected", name)
		}
	}
}
