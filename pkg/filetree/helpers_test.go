package filetree

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"
)

// memReader serves directory listings for absolute paths under root from an
// in-memory filesystem.
type memReader struct {
	root  string
	fsys  fstest.MapFS
	reads atomic.Int32
	fail  map[string]bool
}

func newMemReader(root string, files ...string) *memReader {
	m := &memReader{root: root, fsys: fstest.MapFS{}, fail: map[string]bool{}}
	for _, f := range files {
		if strings.HasSuffix(f, "/") {
			m.fsys[strings.TrimSuffix(f, "/")] = &fstest.MapFile{Mode: fs.ModeDir | 0o755}
			continue
		}
		m.fsys[f] = &fstest.MapFile{Data: []byte("x")}
	}
	return m
}

func (m *memReader) ReadDir(name string) ([]fs.DirEntry, error) {
	m.reads.Add(1)
	if m.fail[name] {
		return nil, fs.ErrPermission
	}
	rel, err := filepath.Rel(m.root, name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, fs.ErrNotExist
	}
	return fs.ReadDir(m.fsys, filepath.ToSlash(rel))
}

func (m *memReader) abs(rel string) string {
	return filepath.Join(m.root, filepath.FromSlash(rel))
}

// validSet accepts exactly the listed paths.
func validSet(paths ...string) Validator {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return ValidatorFunc(func(_ context.Context, path string) (bool, error) {
		return set[path], nil
	})
}

// makeTree creates files (and directories ending in "/") under a temp dir.
func makeTree(t *testing.T, entries ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, e := range entries {
		p := filepath.Join(root, filepath.FromSlash(e))
		if strings.HasSuffix(e, "/") {
			if err := os.MkdirAll(p, 0o755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("export {}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func start(t *testing.T, opts Options) *Navigator {
	t.Helper()
	v := New(opts)
	v.Start(context.Background())
	return v
}

func press(v *Navigator, keys ...Key) {
	for _, k := range keys {
		v.Handle(context.Background(), k)
	}
}

func activeName(v *Navigator) string {
	if n := v.ActiveNode(); n != nil {
		return n.Name
	}
	return ""
}

func visibleNames(v *Navigator) []string {
	var names []string
	for _, id := range v.Visible() {
		names = append(names, v.Tree().Node(id).Name)
	}
	return names
}

func childNames(tr *Tree, id NodeID) []string {
	var names []string
	for _, c := range tr.Node(id).Children() {
		names = append(names, tr.Node(c).Name)
	}
	sort.Strings(names)
	return names
}
