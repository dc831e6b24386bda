package testutil

import (
	"path/filepath"
	"testing"
)

func TestCreateFile(t *testing.T) {
	dir := t.TempDir()

	path := CreateFile(t, dir, "test.txt", "hello world")
	if !FileExists(t, path) {
		t.Error("File was not created")
	}
	if content := ReadFile(t, path); content != "hello world" {
		t.Errorf("File content = %q, want %q", content, "hello world")
	}

	// Parent directories are created on demand
	nested := CreateFile(t, dir, "sub/dir/test2.txt", "nested")
	if !FileExists(t, nested) {
		t.Error("Nested file was not created")
	}
}

func TestCreateDir(t *testing.T) {
	parent := t.TempDir()

	if dir := CreateDir(t, parent, "subdir"); !DirExists(t, dir) {
		t.Error("Directory was not created")
	}
	if nested := CreateDir(t, parent, "a/b/c"); !DirExists(t, nested) {
		t.Error("Nested directory was not created")
	}
}

func TestCreateSymlink(t *testing.T) {
	SkipOnWindows(t)

	dir := t.TempDir()
	target := CreateFile(t, dir, "target.txt", "target content")
	link := filepath.Join(dir, "link.txt")

	CreateSymlink(t, target, link)

	if !SymlinkExists(t, link) {
		t.Error("Symlink was not created")
	}
	if actual := ReadSymlink(t, link); actual != target {
		t.Errorf("Symlink target = %q, want %q", actual, target)
	}
	AssertSymlink(t, link, target)
}

func TestExistenceChecks(t *testing.T) {
	dir := t.TempDir()
	file := CreateFile(t, dir, "exists.txt", "content")
	subdir := CreateDir(t, dir, "subdir")

	if !FileExists(t, file) {
		t.Error("FileExists returned false for existing file")
	}
	if FileExists(t, filepath.Join(dir, "notexists.txt")) {
		t.Error("FileExists returned true for non-existing file")
	}
	if FileExists(t, subdir) {
		t.Error("FileExists returned true for directory")
	}
	if !DirExists(t, subdir) {
		t.Error("DirExists returned false for existing directory")
	}
	if DirExists(t, file) {
		t.Error("DirExists returned true for file")
	}

	AssertNoFile(t, filepath.Join(dir, "notexists.txt"))
}

func TestSameFile(t *testing.T) {
	SkipOnWindows(t)

	dir := t.TempDir()
	target := CreateFile(t, dir, "target.txt", "content")
	other := CreateFile(t, dir, "other.txt", "content")
	link := filepath.Join(dir, "link.txt")
	CreateSymlink(t, target, link)

	if !SameFile(t, target, link) {
		t.Error("SameFile returned false for a link to the file")
	}
	if SameFile(t, target, other) {
		t.Error("SameFile returned true for distinct files with equal content")
	}
	if SameFile(t, target, filepath.Join(dir, "gone")) {
		t.Error("SameFile returned true for a missing path")
	}
}

func TestAssertFileContent(t *testing.T) {
	dir := t.TempDir()
	file := CreateFile(t, dir, "test.txt", "expected content")

	AssertFileContent(t, file, "expected content")
}
