// Package config loads bg3loc settings from bg3loc.yaml (or the legacy
// JSON config.ini) and BG3LOC_* environment variables.
//
// Lookup order for the file: explicit --config path, then the working
// directory, then the directory of the executable. Environment variables
// override values from the file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = "bg3loc.yaml"

// LegacyFileName is the JSON config file used by earlier releases.
const LegacyFileName = "config.ini"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BG3LOC_"

// Packager kinds.
const (
	PackagerDivine    = "divine"
	PackagerDirectory = "directory"
)

// DefaultPrompt asks for a translation of {msg} into {lang} that keeps the
// game's inline markup intact.
const DefaultPrompt = `You are translating text from the game Baldur's Gate 3 into {lang}.
Keep every XML-like tag (for example <LSTag ...>, <i>, <br>) and every
placeholder such as [1] unchanged. Reply with the translation only.

{msg}`

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

// Config is the merged configuration.
type Config struct {
	// APIKey authenticates against the chat-completions endpoint.
	APIKey string `yaml:"api_key" json:"api_key" env:"API_KEY" validate:"required"`
	// BaseURL of an OpenAI-compatible API; empty means api.openai.com.
	BaseURL string `yaml:"base_url" json:"base_url" env:"BASE_URL" validate:"omitempty,url"`
	// Model name sent with every request.
	Model string `yaml:"model" json:"model" env:"MODEL" validate:"required"`
	// Prompt template; {msg} is replaced by the source text, {lang} by
	// TargetLanguage.
	Prompt string `yaml:"prompt" json:"prompt" env:"PROMPT" validate:"required,contains={msg}"`

	// SourceLanguage names the Localization/<SourceLanguage> folder read.
	SourceLanguage string `yaml:"source_language" json:"source_language" env:"SOURCE_LANGUAGE" validate:"required,excludesall=/\\"`
	// TargetLanguage names the Localization/<TargetLanguage> folder written.
	TargetLanguage string `yaml:"target_language" json:"target_language" env:"TARGET_LANGUAGE" validate:"required,excludesall=/\\,nefield=SourceLanguage"`
	// OutputSuffix is appended to the mod name for the default output archive.
	OutputSuffix string `yaml:"output_suffix" json:"output_suffix" env:"OUTPUT_SUFFIX"`

	// MaxConcurrent bounds in-flight requests (0 = default of 100).
	MaxConcurrent int `yaml:"max_concurrent" json:"max_concurrent" env:"MAX_CONCURRENT" validate:"gte=0,lte=1000"`
	// RequestsPerSecond paces requests (0 = unpaced).
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second" env:"REQUESTS_PER_SECOND" validate:"gte=0"`
	// Timeout bounds a single request (0 = no timeout).
	Timeout time.Duration `yaml:"timeout" json:"-" env:"TIMEOUT" validate:"gte=0"`
	// Proxy for API requests; HTTP(S)_PROXY are used when empty.
	Proxy string `yaml:"proxy" json:"proxy" env:"PROXY" validate:"omitempty,url"`

	// Packager selects how .pak archives are handled.
	Packager string `yaml:"packager" json:"packager" env:"PACKAGER" validate:"oneof=divine directory"`
	// DivinePath is the LSLib divine executable.
	DivinePath string `yaml:"divine_path" json:"divine_path" env:"DIVINE_PATH"`
	// WorkDir holds unpacked mods; empty means <executable dir>/mod-unpackage.
	WorkDir string `yaml:"work_dir" json:"work_dir" env:"WORK_DIR"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model:          "gpt-4o-mini",
		Prompt:         DefaultPrompt,
		SourceLanguage: "English",
		TargetLanguage: "Chinese",
		OutputSuffix:   "-CHS",
		Packager:       PackagerDivine,
		DivinePath:     "divine",
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the configuration. When explicit is non-empty that file must
// exist; otherwise the search path is tried and a missing file is not an
// error. The returned path is the file actually used ("" when none).
func Load(explicit string) (*Config, string, error) {
	cfg := Default()

	path := explicit
	if path == "" {
		path = find()
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, path, err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, path, &Error{Source: "environment", Err: err}
	}
	cfg.normalize()
	return cfg, path, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Error{Source: path, Err: err}
	}

	if strings.EqualFold(filepath.Ext(path), ".ini") {
		err = json.Unmarshal(data, c)
	} else {
		err = yaml.Unmarshal(data, c)
	}
	if err != nil {
		return &Error{Source: path, Err: fmt.Errorf("parsing: %w", err)}
	}
	return nil
}

// find returns the first existing config file on the search path.
func find() string {
	for _, dir := range SearchDirs() {
		for _, name := range []string{FileName, "bg3loc.yml", LegacyFileName} {
			p := filepath.Join(dir, name)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p
			}
		}
	}
	return ""
}

// SearchDirs lists the directories searched for a config file.
func SearchDirs() []string {
	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	if exe, err := ExecutableDir(); err == nil && (len(dirs) == 0 || exe != dirs[0]) {
		dirs = append(dirs, exe)
	}
	return dirs
}

// ExecutableDir is the directory of the running binary.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

func (c *Config) normalize() {
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	c.Model = strings.TrimSpace(c.Model)
	c.SourceLanguage = strings.TrimSpace(c.SourceLanguage)
	c.TargetLanguage = strings.TrimSpace(c.TargetLanguage)
	c.Packager = strings.ToLower(strings.TrimSpace(c.Packager))
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// ErrExists is returned by WriteTemplate when the target file exists.
var ErrExists = errors.New("config file already exists")

// WriteTemplate writes a commented default bg3loc.yaml to path. Existing
// files are left alone unless force is set.
func WriteTemplate(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s: %w", path, ErrExists)
	}
	return os.WriteFile(path, []byte(Template()), 0600)
}

// Template renders the default configuration as commented YAML.
func Template() string {
	d := Default()
	var b strings.Builder
	b.WriteString("# bg3loc configuration\n")
	b.WriteString("# Every key can be overridden with a BG3LOC_<KEY> environment variable.\n\n")
	b.WriteString("# API key (or use `bg3loc auth login`)\n")
	b.WriteString("api_key: \"\"\n")
	b.WriteString("# OpenAI-compatible endpoint, e.g. https://api.deepseek.com\n")
	b.WriteString("base_url: \"\"\n")
	fmt.Fprintf(&b, "model: %s\n\n", d.Model)
	b.WriteString("# {msg} is replaced by the text to translate, {lang} by target_language.\n")
	b.WriteString("prompt: |-\n")
	for _, line := range strings.Split(d.Prompt, "\n") {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "source_language: %s\n", d.SourceLanguage)
	fmt.Fprintf(&b, "target_language: %s\n", d.TargetLanguage)
	fmt.Fprintf(&b, "output_suffix: %s\n\n", d.OutputSuffix)
	b.WriteString("# 0 = 100 concurrent requests\n")
	b.WriteString("max_concurrent: 0\n")
	b.WriteString("# 0 = no pacing\n")
	b.WriteString("requests_per_second: 0\n")
	b.WriteString("# per-request timeout, e.g. 2m; 0 = none\n")
	b.WriteString("timeout: 0s\n")
	b.WriteString("proxy: \"\"\n\n")
	b.WriteString("# divine (LSLib) or directory\n")
	fmt.Fprintf(&b, "packager: %s\n", d.Packager)
	fmt.Fprintf(&b, "divine_path: %s\n", d.DivinePath)
	b.WriteString("work_dir: \"\"\n")
	return b.String()
}
