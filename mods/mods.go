// Package mods locates localization files inside an unpacked Baldur's
// Gate 3 mod:
//
//	<root>/Mods/<ModName>/Localization/English/english.xml
//
// Mods are usually authored on Windows, so folder and file names are
// matched case-insensitively.
package mods

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoMods means the directory has no Mods/ folder.
var ErrNoMods = errors.New("no Mods directory")

// Localization is one translatable mod.
type Localization struct {
	// Mod is the folder name under Mods/.
	Mod string
	// Dir is the mod folder.
	Dir string
	// Source is the existing source-language file.
	Source string
	// Target is where the translated file goes. It may not exist yet.
	Target string
}

// Missing is a mod without a source-language file.
type Missing struct {
	Mod      string
	Dir      string
	Expected string
}

// Result lists discovered mods in name order.
type Result struct {
	Found   []Localization
	Missing []Missing
}

// Discover scans root/Mods for mods carrying a <sourceLang> localization
// file and computes the matching <targetLang> output path.
func Discover(root, sourceLang, targetLang string) (*Result, error) {
	modsDir, ok := lookup(root, "Mods")
	if !ok {
		return nil, fmt.Errorf("%s: %w", root, ErrNoMods)
	}

	entries, err := os.ReadDir(modsDir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", modsDir, err)
	}

	res := &Result{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(modsDir, e.Name())
		loc, found := findLocalization(dir, sourceLang, targetLang)
		if !found {
			res.Missing = append(res.Missing, Missing{
				Mod:      e.Name(),
				Dir:      dir,
				Expected: filepath.Join(dir, "Localization", sourceLang, fileName(sourceLang)),
			})
			continue
		}
		loc.Mod = e.Name()
		res.Found = append(res.Found, loc)
	}
	return res, nil
}

// fileName is the localization file name for a language folder.
func fileName(lang string) string { return strings.ToLower(lang) + ".xml" }

// HasMods reports whether dir looks like an unpacked mod.
func HasMods(dir string) bool {
	_, ok := lookup(dir, "Mods")
	return ok
}

func findLocalization(modDir, sourceLang, targetLang string) (Localization, bool) {
	locDir, ok := lookup(modDir, "Localization")
	if !ok {
		return Localization{}, false
	}
	srcDir, ok := lookup(locDir, sourceLang)
	if !ok {
		return Localization{}, false
	}
	src, ok := lookup(srcDir, fileName(sourceLang))
	if !ok {
		return Localization{}, false
	}
	if info, err := os.Stat(src); err != nil || info.IsDir() {
		return Localization{}, false
	}

	dstDir, ok := lookup(locDir, targetLang)
	if !ok {
		dstDir = filepath.Join(locDir, targetLang)
	}
	dst, ok := lookup(dstDir, fileName(targetLang))
	if !ok {
		dst = filepath.Join(dstDir, fileName(targetLang))
	}

	return Localization{Dir: modDir, Source: src, Target: dst}, true
}

// lookup finds the entry of dir named name, preferring an exact match over
// a case-insensitive one.
func lookup(dir, name string) (string, bool) {
	exact := filepath.Join(dir, name)
	if _, err := os.Stat(exact); err == nil {
		return exact, true
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if strings.EqualFold(e.Name(), name) {
			return filepath.Join(dir, e.Name()), true
		}
	}
	return "", false
}
