package widget

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FlagStore 持久化“这个访客已经点过喜欢”。它只是客户端的记录，服务端不做校验。
type FlagStore interface {
	HasLiked() (bool, error)
	SetLiked() error
}

type flagFile struct {
	HasLiked bool `json:"has_liked"`
}

// FileFlagStore 把标记保存在一个JSON文件里
type FileFlagStore struct {
	path string
	mu   sync.Mutex
}

func NewFileFlagStore(path string) *FileFlagStore {
	return &FileFlagStore{path: path}
}

// DefaultFlagPath 返回 $XDG_CONFIG_HOME/statsctl/flags.json（或平台对应目录）
func DefaultFlagPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "statsctl", "flags.json"), nil
}

func (s *FileFlagStore) HasLiked() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	var f flagFile
	if err := json.Unmarshal(b, &f); err != nil {
		return false, fmt.Errorf("标记文件 %s 已损坏: %w", s.path, err)
	}
	return f.HasLiked, nil
}

// SetLiked 写临时文件再改名，避免留下半个文件
func (s *FileFlagStore) SetLiked() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	b, err := json.Marshal(flagFile{HasLiked: true})
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// MemoryFlagStore 是进程内的实现，用于测试
type MemoryFlagStore struct {
	mu    sync.Mutex
	liked bool
}

func (m *MemoryFlagStore) HasLiked() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.liked, nil
}

func (m *MemoryFlagStore) SetLiked() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.liked = true
	return nil
}

// SessionFlags 对应一次页面会话内的标记，进程退出即丢失
type SessionFlags struct {
	mu    sync.Mutex
	flags map[string]bool
}

func NewSessionFlags() *SessionFlags {
	return &SessionFlags{flags: make(map[string]bool)}
}

func (s *SessionFlags) Set(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[key] = true
}

func (s *SessionFlags) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags[key]
}
