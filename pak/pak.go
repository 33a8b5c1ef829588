// Package pak unpacks and repacks Baldur's Gate 3 .pak mod archives.
//
// The translation pipeline only needs the two operations of Packager; the
// concrete implementation is chosen by the caller:
//
//   - Divine runs LSLib's divine command-line tool.
//   - Directory treats an already unpacked folder as the archive.
package pak

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Packager converts between an archive and a directory tree.
type Packager interface {
	// Unpack extracts archive into dir.
	Unpack(ctx context.Context, archive, dir string) error
	// Pack builds archive from the contents of dir.
	Pack(ctx context.Context, dir, archive string) error
}

// Kinds accepted by New.
const (
	KindDivine    = "divine"
	KindDirectory = "directory"
)

// ErrExists is returned when the destination already exists.
var ErrExists = errors.New("destination already exists")

// New returns the packager for kind. divinePath is only used by divine.
func New(kind, divinePath string) (Packager, error) {
	switch strings.ToLower(kind) {
	case "", KindDivine:
		return &Divine{Path: divinePath}, nil
	case KindDirectory:
		return Directory{}, nil
	}
	return nil, fmt.Errorf("unknown packager %q (valid: divine, directory)", kind)
}

// ---------------------------------------------------------------------------
// Divine (LSLib)
// ---------------------------------------------------------------------------

// Divine drives LSLib's divine CLI:
//
//	divine -g bg3 -a extract-package -s Mod.pak -d out/
//	divine -g bg3 -a create-package -s out/ -d Mod.pak
type Divine struct {
	// Path to the divine executable; "divine" is looked up in PATH.
	Path string
	// Game passed to -g (default "bg3").
	Game string
}

// ToolError is a failed divine invocation.
type ToolError struct {
	Action string
	Output string
	Err    error
}

func (e *ToolError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("divine %s failed: %v", e.Action, e.Err)
	}
	return fmt.Sprintf("divine %s failed: %v: %s", e.Action, e.Err, e.Output)
}

func (e *ToolError) Unwrap() error { return e.Err }

// Unpack implements Packager.
func (d *Divine) Unpack(ctx context.Context, archive, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return d.run(ctx, "extract-package", archive, dir)
}

// Pack implements Packager.
func (d *Divine) Pack(ctx context.Context, dir, archive string) error {
	if err := os.MkdirAll(filepath.Dir(archive), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := d.run(ctx, "create-package", dir, archive); err != nil {
		return err
	}
	if _, err := os.Stat(archive); err != nil {
		return &ToolError{Action: "create-package", Err: fmt.Errorf("no archive written: %w", err)}
	}
	return nil
}

func (d *Divine) run(ctx context.Context, action, src, dst string) error {
	bin := d.Path
	if bin == "" {
		bin = "divine"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return fmt.Errorf("divine not found (%s); install LSLib or set divine_path: %w", bin, err)
	}
	game := d.Game
	if game == "" {
		game = "bg3"
	}

	cmd := exec.CommandContext(ctx, path, "-g", game, "-a", action, "-s", src, "-d", dst)
	var out strings.Builder
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return &ToolError{Action: action, Output: strings.TrimSpace(out.String()), Err: err}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Directory
// ---------------------------------------------------------------------------

// Directory is a Packager for mods that are already unpacked: the
// "archive" is a directory that is copied in and out unchanged.
type Directory struct{}

// Unpack implements Packager.
func (Directory) Unpack(ctx context.Context, archive, dir string) error {
	return copyTree(ctx, archive, dir)
}

// Pack implements Packager.
func (Directory) Pack(ctx context.Context, dir, archive string) error {
	return copyTree(ctx, dir, archive)
}

func copyTree(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", src)
	}
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("%s: %w", dst, ErrExists)
	}
	if err := os.CopyFS(dst, os.DirFS(src)); err != nil {
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	return nil
}
