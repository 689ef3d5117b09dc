package widget

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileFlagStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "flags.json")
	s := NewFileFlagStore(path)

	liked, err := s.HasLiked()
	if err != nil || liked {
		t.Fatalf("missing file: liked=%v err=%v", liked, err)
	}
	if err := s.SetLiked(); err != nil {
		t.Fatalf("set: %v", err)
	}

	// 新实例读取同一个文件，模拟下一次启动
	liked, err = NewFileFlagStore(path).HasLiked()
	if err != nil || !liked {
		t.Fatalf("after set: liked=%v err=%v", liked, err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temporary file left behind: %v", err)
	}
}

func TestFileFlagStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileFlagStore(path).HasLiked(); err == nil {
		t.Fatal("corrupt file should be reported")
	}
}

func TestDefaultFlagPath_UsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	got, err := DefaultFlagPath()
	if err != nil {
		t.Fatalf("default path: %v", err)
	}
	if filepath.Base(got) != "flags.json" || filepath.Base(filepath.Dir(got)) != "statsctl" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestSessionFlags(t *testing.T) {
	s := NewSessionFlags()
	if s.Has(SessionViewIncremented) {
		t.Fatal("new session should be empty")
	}
	s.Set(SessionViewIncremented)
	if !s.Has(SessionViewIncremented) {
		t.Fatal("flag not recorded")
	}
}
