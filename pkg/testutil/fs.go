package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteTree writes files (slash separated paths relative to root) and
// returns root.
func WriteTree(t testing.TB, root string, files map[string]string) string {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("creating %s: %v", filepath.Dir(p), err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", p, err)
		}
	}
	return root
}

// TempProject writes p into a fresh temporary directory.
func TempProject(t testing.TB, p Project) string {
	t.Helper()
	return WriteTree(t, t.TempDir(), p.Files)
}
