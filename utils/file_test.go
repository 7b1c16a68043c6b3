package utils

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestListFilesSkipsDirsAndMissing(t *testing.T) {
	files, err := ListFiles(filepath.Join(t.TempDir(), "nope"))
	if err != nil || len(files) != 0 {
		t.Fatalf("missing dir = %v %v", files, err)
	}

	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "b.png"), nil, 0o644)
	os.WriteFile(filepath.Join(dir, "a.png"), nil, 0o644)
	os.Mkdir(filepath.Join(dir, "sub"), 0o755)

	files, err = ListFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(files, ",") != "a.png,b.png" {
		t.Fatalf("files = %v", files)
	}
}

func TestSafeJoin(t *testing.T) {
	for _, bad := range []string{"", "../x.png", "a/b.png", ".hidden"} {
		if _, err := SafeJoin("/data", bad); err == nil {
			t.Errorf("SafeJoin(%q) accepted", bad)
		}
	}
	if p, err := SafeJoin("/data", "ha1.png"); err != nil || p != filepath.Join("/data", "ha1.png") {
		t.Fatalf("SafeJoin = %q %v", p, err)
	}
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "dst.png")
	os.WriteFile(src, []byte("data"), 0o644)

	if err := MoveFile(src, dst); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("source still present: %v", err)
	}
	if b, _ := os.ReadFile(dst); string(b) != "data" {
		t.Fatalf("dst = %q", b)
	}
}

func TestUnzipFlat(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "in.zip")
	f, _ := os.Create(src)
	zw := zip.NewWriter(f)
	for _, n := range []string{"deep/dir/one.png", "two.txt", "deep/", "../up.png", "/abs.png", "HA1..png"} {
		w, _ := zw.Create(n)
		w.Write([]byte(n))
	}
	zw.Close()
	f.Close()

	out := filepath.Join(tmp, "out")
	names, err := UnzipFlat(src, out, func(n string) bool { return strings.HasSuffix(n, ".png") })
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(names, ",") != "one.png,HA1..png" {
		t.Fatalf("names = %v", names)
	}
	if _, err := os.Stat(filepath.Join(tmp, "up.png")); !os.IsNotExist(err) {
		t.Fatalf("entry escaped dest: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "one.png")); err != nil {
		t.Fatal(err)
	}
}
