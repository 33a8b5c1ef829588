package pak

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		kind    string
		want    string
		wantErr bool
	}{
		{"", "*pak.Divine", false},
		{"divine", "*pak.Divine", false},
		{"Directory", "pak.Directory", false},
		{"zip", "", true},
	}
	for _, tc := range tests {
		p, err := New(tc.kind, "/opt/lslib/divine")
		if tc.wantErr {
			if err == nil {
				t.Errorf("New(%q) succeeded, want error", tc.kind)
			}
			continue
		}
		if err != nil {
			t.Fatalf("New(%q): %v", tc.kind, err)
		}
		if got := typeName(p); got != tc.want {
			t.Errorf("New(%q) = %s, want %s", tc.kind, got, tc.want)
		}
	}
}

func typeName(p Packager) string {
	switch p.(type) {
	case *Divine:
		return "*pak.Divine"
	case Directory:
		return "pak.Directory"
	}
	return "?"
}

// ---------------------------------------------------------------------------
// Directory
// ---------------------------------------------------------------------------

func TestDirectoryRoundTrip(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "MyMod")
	xml := filepath.Join("Mods", "MyMod", "Localization", "English", "english.xml")
	if err := os.MkdirAll(filepath.Join(src, filepath.Dir(xml)), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(src, xml), []byte("<contentList/>"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	ctx := context.Background()
	work := filepath.Join(root, "work", "MyMod")
	if err := (Directory{}).Unpack(ctx, src, work); err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if data, err := os.ReadFile(filepath.Join(work, xml)); err != nil || string(data) != "<contentList/>" {
		t.Fatalf("unpacked file = %q, %v", data, err)
	}

	out := filepath.Join(root, "MyMod-CHS")
	if err := (Directory{}).Pack(ctx, work, out); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, xml)); err != nil {
		t.Fatalf("packed file missing: %v", err)
	}

	if err := (Directory{}).Pack(ctx, work, out); !errors.Is(err, ErrExists) {
		t.Fatalf("second Pack = %v, want ErrExists", err)
	}
}

func TestDirectoryRejectsFiles(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "Mod.pak")
	if err := os.WriteFile(file, []byte("LSPK"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := (Directory{}).Unpack(context.Background(), file, filepath.Join(root, "out")); err == nil {
		t.Fatal("Unpack(file) succeeded, want error")
	}
}

func TestDirectoryCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (Directory{}).Unpack(ctx, t.TempDir(), filepath.Join(t.TempDir(), "x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("Unpack = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// Divine
// ---------------------------------------------------------------------------

// fakeDivine writes a shell script that mimics divine's CLI: it logs its
// arguments and creates the destination for create-package.
func fakeDivine(t *testing.T) (bin, argLog string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	dir := t.TempDir()
	argLog = filepath.Join(dir, "args.log")
	bin = filepath.Join(dir, "divine")
	script := `#!/bin/sh
echo "$@" >> "` + argLog + `"
while [ $# -gt 0 ]; do
	case "$1" in
		-a) action="$2"; shift 2 ;;
		-s) src="$2"; shift 2 ;;
		-d) dst="$2"; shift 2 ;;
		*) shift ;;
	esac
done
case "$src" in
	*broken*) echo "Failed to open package: bad signature" >&2; exit 3 ;;
esac
if [ "$action" = "create-package" ]; then
	echo LSPK > "$dst"
fi
if [ "$action" = "extract-package" ]; then
	mkdir -p "$dst/Mods/Fake"
fi
exit 0
`
	if err := os.WriteFile(bin, []byte(script), 0755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return bin, argLog
}

func TestDivineInvocation(t *testing.T) {
	bin, argLog := fakeDivine(t)
	d := &Divine{Path: bin}
	root := t.TempDir()
	ctx := context.Background()

	work := filepath.Join(root, "work")
	if err := d.Unpack(ctx, filepath.Join(root, "Mod.pak"), work); err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if _, err := os.Stat(filepath.Join(work, "Mods", "Fake")); err != nil {
		t.Fatalf("unpacked tree missing: %v", err)
	}

	out := filepath.Join(root, "dist", "Mod-CHS.pak")
	if err := d.Pack(ctx, work, out); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	data, err := os.ReadFile(argLog)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{
		"-g bg3 -a extract-package -s " + filepath.Join(root, "Mod.pak") + " -d " + work,
		"-g bg3 -a create-package -s " + work + " -d " + out,
	}
	if len(lines) != len(want) {
		t.Fatalf("divine called %d times, want %d: %q", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestDivineFailureCarriesOutput(t *testing.T) {
	bin, _ := fakeDivine(t)
	d := &Divine{Path: bin}
	root := t.TempDir()

	err := d.Unpack(context.Background(), filepath.Join(root, "broken.pak"), filepath.Join(root, "out"))
	var te *ToolError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *ToolError", err)
	}
	if te.Action != "extract-package" || !strings.Contains(te.Output, "bad signature") {
		t.Errorf("ToolError = %+v", te)
	}
}

func TestDivineNotFound(t *testing.T) {
	d := &Divine{Path: filepath.Join(t.TempDir(), "no-such-divine")}
	err := d.Pack(context.Background(), t.TempDir(), filepath.Join(t.TempDir(), "x.pak"))
	if err == nil || !strings.Contains(err.Error(), "divine not found") {
		t.Fatalf("err = %v, want not-found error", err)
	}
}
