package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDataDirAndFilePathUseXDGDataHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir() error: %v", err)
	}
	wantDir := filepath.Join(tmp, "bg3loc")
	if dir != wantDir {
		t.Fatalf("DataDir() = %q, want %q", dir, wantDir)
	}

	wantPath := filepath.Join(tmp, "bg3loc", "auth.json")
	if got := FilePath(); got != wantPath {
		t.Fatalf("FilePath() = %q, want %q", got, wantPath)
	}
}

func TestSaveLoadRemoveLifecycle(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	if err := SetAPIKey("", "sk-default-123456", ""); err != nil {
		t.Fatalf("SetAPIKey(default) error: %v", err)
	}
	if err := SetAPIKey("deepseek", "sk-deepseek-7890", "https://api.deepseek.com"); err != nil {
		t.Fatalf("SetAPIKey(deepseek) error: %v", err)
	}

	path := filepath.Join(tmp, "bg3loc", "auth.json")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat auth.json: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("auth.json mode = %o, want 600", info.Mode().Perm())
	}

	loaded := Load()
	if loaded[DefaultProfile] == nil || loaded[DefaultProfile].Key != "sk-default-123456" {
		t.Fatalf("Load() missing default key: %#v", loaded[DefaultProfile])
	}
	if loaded["deepseek"].Saved == 0 {
		t.Fatalf("Saved timestamp not recorded")
	}
	if got := GetBaseURL("deepseek"); got != "https://api.deepseek.com" {
		t.Fatalf("GetBaseURL(deepseek) = %q", got)
	}

	if err := Remove(""); err != nil {
		t.Fatalf("Remove(default) error: %v", err)
	}
	if got := GetAPIKey(DefaultProfile); got != "" {
		t.Fatalf("GetAPIKey after remove = %q, want empty", got)
	}
	if GetAPIKey("deepseek") == "" {
		t.Fatalf("deepseek key should remain after removing default")
	}

	if err := Remove("missing-profile"); err != nil {
		t.Fatalf("Remove(missing) should be no-op, got: %v", err)
	}

	if err := RemoveAll(); err != nil {
		t.Fatalf("RemoveAll() error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("auth.json should be removed, stat err=%v", err)
	}
	if got := Load(); len(got) != 0 {
		t.Fatalf("Load() after RemoveAll should be empty, got=%#v", got)
	}
}

func TestLoadIgnoresCorruptFile(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	dir := filepath.Join(tmp, "bg3loc")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "auth.json"), []byte("{not json"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if got := Load(); len(got) != 0 {
		t.Fatalf("Load() = %#v, want empty store", got)
	}
}

func TestResolveAPIKeyPriority(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	if err := SetAPIKey("", "stored-key", ""); err != nil {
		t.Fatalf("SetAPIKey() error: %v", err)
	}

	tests := []struct {
		flag, configured string
		wantKey, wantSrc string
	}{
		{"flag-key", "config-key", "flag-key", SourceFlag},
		{"  ", "config-key", "config-key", SourceConfig},
		{"", "", "stored-key", SourceStore},
	}
	for _, tc := range tests {
		key, src := ResolveAPIKey("", tc.flag, tc.configured)
		if key != tc.wantKey || src != tc.wantSrc {
			t.Fatalf("ResolveAPIKey(%q, %q) = %q/%q, want %q/%q", tc.flag, tc.configured, key, src, tc.wantKey, tc.wantSrc)
		}
	}

	if key, src := ResolveAPIKey("other", "", ""); key != "" || src != "" {
		t.Fatalf("unknown profile = %q/%q, want empty", key, src)
	}
}

func TestMaskKey(t *testing.T) {
	if got := MaskKey("short"); got != "****" {
		t.Fatalf("MaskKey(short) = %q, want ****", got)
	}
	if got := MaskKey("12345678"); got != "****" {
		t.Fatalf("MaskKey(8 chars) = %q, want ****", got)
	}
	if got := MaskKey("123456789"); got != "1234...6789" {
		t.Fatalf("MaskKey(9 chars) = %q, want 1234...6789", got)
	}
}
