// bg3loc: machine translation for Baldur's Gate 3 mod localization files.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/minios-linux/bg3loc/config"
	"github.com/minios-linux/bg3loc/i18n"
	"github.com/minios-linux/bg3loc/locafile"
	"github.com/minios-linux/bg3loc/mods"
	"github.com/minios-linux/bg3loc/pak"
	"github.com/minios-linux/bg3loc/progress"
	"github.com/minios-linux/bg3loc/report"
	"github.com/minios-linux/bg3loc/settings"
	"github.com/minios-linux/bg3loc/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Styles render without color when stderr is not a terminal.
var (
	stderrRenderer = lipgloss.NewRenderer(os.Stderr)
	infoStyle      = stderrRenderer.NewStyle().Foreground(lipgloss.Color("4"))
	okStyle        = stderrRenderer.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle      = stderrRenderer.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	errorStyle     = stderrRenderer.NewStyle().Foreground(lipgloss.Color("1"))
	headingStyle   = lipgloss.NewStyle().Bold(true)
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, infoStyle.Render("[INFO]")+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, okStyle.Render("[OK]")+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, warnStyle.Render("[WARN]")+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, errorStyle.Render("[ERROR]")+" "+format+"\n", args...)
}

// isInteractive reports whether prompts can be shown.
func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && progress.IsTerminal(os.Stderr)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	configPath string
	apiKeyFlag string
	profile    string
	verbose    bool
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bg3loc",
		Short: i18n.T("Translate Baldur's Gate 3 mod localization with an AI model"),
		Long: i18n.T(`bg3loc translates the <content> entries of Baldur's Gate 3 localization
files through an OpenAI-compatible chat-completions API.

Commands:
  translate   Unpack a .pak mod, translate its localization and repack it
  xml         Translate a single localization XML file
  status      List localization files and entry counts
  auth        Manage the stored API key
  config      Create or show the configuration`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", i18n.T("Config file (default: bg3loc.yaml or config.ini next to the program)"))
	root.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", i18n.T("API key (or BG3LOC_API_KEY env var)"))
	root.PersistentFlags().StringVar(&profile, "profile", settings.DefaultProfile, i18n.T("Credential profile"))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, i18n.T("Enable detailed logging"))

	root.AddCommand(
		newTranslateCmd(),
		newXMLCmd(),
		newStatusCmd(),
		newAuthCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logWarning(i18n.T("Interrupted, finishing in-flight requests..."))
		cancel()
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("bg3loc version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// Configuration helpers
// ---------------------------------------------------------------------------

// loadConfig merges config file, environment, flags and the credential
// store. With online set the API key is required.
func loadConfig(online bool) (*config.Config, error) {
	cfg, path, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		if path != "" {
			logInfo(i18n.T("Using config %s"), path)
		} else {
			logInfo(i18n.T("No config file found, using defaults"))
		}
	}

	key, source := settings.ResolveAPIKey(profile, apiKeyFlag, cfg.APIKey)
	cfg.APIKey = key
	if source == settings.SourceStore && cfg.BaseURL == "" {
		cfg.BaseURL = settings.GetBaseURL(profile)
	}
	if verbose && source != "" {
		logInfo(i18n.T("API key from %s: %s"), source, settings.MaskKey(key))
	}

	if online {
		err = cfg.Validate()
	} else {
		err = cfg.ValidateOffline()
	}
	if err != nil {
		var cerr *config.Error
		if errors.As(err, &cerr) && cerr.Source == "" {
			cerr.Source = path
		}
		return nil, err
	}
	return cfg, nil
}

// newTranslator builds the chat-completions backend for cfg.
func newTranslator(cfg *config.Config) translate.Translator {
	client := translate.NewOpenAIClient(translate.OpenAIConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Proxy:   cfg.Proxy,
		Timeout: cfg.Timeout,
	})
	return translate.NewBackend(client, cfg.Prompt,
		translate.WithLanguage(cfg.TargetLanguage),
		translate.WithRateLimit(cfg.RequestsPerSecond),
	)
}

// translateDocument runs the pipeline on one file with a progress bar.
func translateDocument(ctx context.Context, tr translate.Translator, cfg *config.Config, in, out, label string) (translate.Summary, error) {
	bar := progress.New(os.Stderr, label)
	opts := translate.Options{
		MaxConcurrent: cfg.MaxConcurrent,
		Verbose:       verbose,
		OnProgress:    bar.Update,
		OnLog: func(format string, args ...any) {
			bar.Printf(infoStyle.Render("[INFO]")+" "+format, args...)
		},
		OnError: func(format string, args ...any) {
			bar.Printf(errorStyle.Render("[ERROR]")+" "+format, args...)
		},
	}

	sum, err := translate.TranslateFile(ctx, in, out, tr, opts)
	bar.Finish()
	if err != nil {
		return sum, err
	}

	logSuccess(i18n.T("%s: %d changed, %d unchanged, %d failed (%s)"),
		label, sum.Changed, sum.Unchanged, sum.Failed, bar.Elapsed())
	return sum, nil
}

// cleanPath strips the quotes and whitespace that dragging a file into a
// terminal tends to add.
func cleanPath(p string) string {
	return strings.Trim(strings.TrimSpace(p), `"'`)
}

// ---------------------------------------------------------------------------
// translate (mod archive workflow)
// ---------------------------------------------------------------------------

type translateArgs struct {
	archive     string
	output      string
	packager    string
	report      string
	keepWorkdir bool
	force       bool
	dryRun      bool
}

func newTranslateCmd() *cobra.Command {
	var a translateArgs

	cmd := &cobra.Command{
		Use:   "translate [mod.pak]",
		Short: i18n.T("Translate the localization of a .pak mod"),
		Long: i18n.T(`Unpack a mod archive, translate every Mods/*/Localization/<source>/<source>.xml
into the target language and pack the result into a new archive.

When no archive is given on a terminal, the paths are asked for interactively.

Examples:
  bg3loc translate MyMod.pak
  bg3loc translate MyMod.pak -o dist/MyMod-CHS.pak --report report.yaml
  bg3loc translate ./MyMod --packager directory`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				a.archive = args[0]
			}
			return runTranslate(cmd.Context(), a)
		},
	}

	cmd.Flags().StringVarP(&a.output, "output", "o", "", i18n.T("Output archive (default: <mod><suffix>.pak next to the input)"))
	cmd.Flags().StringVar(&a.packager, "packager", "", i18n.T("Archive handler: divine or directory (default from config)"))
	cmd.Flags().StringVar(&a.report, "report", "", i18n.T("Write a YAML run report to this file"))
	cmd.Flags().BoolVar(&a.keepWorkdir, "keep-workdir", false, i18n.T("Keep the unpacked working directory"))
	cmd.Flags().BoolVar(&a.force, "force", false, i18n.T("Overwrite an existing output archive"))
	cmd.Flags().BoolVar(&a.dryRun, "dry-run", false, i18n.T("Copy the text unchanged instead of calling the API"))

	_ = cmd.RegisterFlagCompletionFunc("packager", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"divine\tLSLib divine command-line tool",
			"directory\tAlready unpacked mod folder",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// askPaths prompts for the archive and output paths.
func askPaths(a *translateArgs) error {
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(i18n.T("Mod archive to translate")).
			Description(i18n.T("Path to a .pak file or an unpacked mod folder")).
			Value(&a.archive).
			Validate(func(s string) error {
				if _, err := os.Stat(cleanPath(s)); err != nil {
					return errors.New(i18n.T("file not found"))
				}
				return nil
			}),
		huh.NewInput().
			Title(i18n.T("Output archive")).
			Description(i18n.T("Leave empty for the default name")).
			Value(&a.output),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errors.New(i18n.T("aborted"))
		}
		return err
	}
	a.archive = cleanPath(a.archive)
	a.output = cleanPath(a.output)
	return nil
}

// modName is the archive name without its .pak extension.
func modName(archive string) string {
	base := filepath.Base(filepath.Clean(archive))
	if ext := filepath.Ext(base); strings.EqualFold(ext, ".pak") {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// defaultOutput places the translated archive next to the input.
func defaultOutput(archive, suffix, kind string) string {
	name := modName(archive) + suffix
	if kind != pak.KindDirectory {
		name += ".pak"
	}
	return filepath.Join(filepath.Dir(filepath.Clean(archive)), name)
}

// workDir returns the directory that holds unpacked mods.
func workDir(cfg *config.Config) (string, error) {
	if cfg.WorkDir != "" {
		return cfg.WorkDir, nil
	}
	dir, err := config.ExecutableDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mod-unpackage"), nil
}

func runTranslate(ctx context.Context, a translateArgs) error {
	if a.archive == "" {
		if !isInteractive() {
			return errors.New(i18n.T("no mod archive given (usage: bg3loc translate <mod.pak>)"))
		}
		if err := askPaths(&a); err != nil {
			return err
		}
	}
	a.archive = cleanPath(a.archive)
	if _, err := os.Stat(a.archive); err != nil {
		return fmt.Errorf(i18n.T("mod archive: %w"), err)
	}

	cfg, err := loadConfig(!a.dryRun)
	if err != nil {
		return err
	}

	kind := cfg.Packager
	if a.packager != "" {
		kind = strings.ToLower(a.packager)
	}
	packager, err := pak.New(kind, cfg.DivinePath)
	if err != nil {
		return err
	}

	output := a.output
	if output == "" {
		output = defaultOutput(a.archive, cfg.OutputSuffix, kind)
	}
	if samePath(a.archive, output) {
		return errors.New(i18n.T("output would overwrite the input archive; set output_suffix or -o"))
	}
	if _, err := os.Stat(output); err == nil && !a.force {
		return fmt.Errorf(i18n.T("%s already exists (use --force to overwrite)"), output)
	}

	root, err := workDir(cfg)
	if err != nil {
		return err
	}
	work := filepath.Join(root, modName(a.archive))
	if _, err := os.Stat(work); err == nil {
		logWarning(i18n.T("Removing stale working directory %s"), work)
		if err := os.RemoveAll(work); err != nil {
			return err
		}
	}

	logInfo(i18n.T("Unpacking %s"), a.archive)
	if err := packager.Unpack(ctx, a.archive, work); err != nil {
		return fmt.Errorf(i18n.T("unpacking %s: %w"), a.archive, err)
	}

	found, err := mods.Discover(work, cfg.SourceLanguage, cfg.TargetLanguage)
	if err != nil {
		return err
	}
	for _, m := range found.Missing {
		logError(i18n.T("%s: no %s localization (expected %s)"), m.Mod, cfg.SourceLanguage, m.Expected)
	}
	if len(found.Found) == 0 {
		return fmt.Errorf(i18n.T("no %s localization files found in %s"), cfg.SourceLanguage, a.archive)
	}

	var tr translate.Translator = translate.Identity{}
	if a.dryRun {
		logWarning(i18n.T("Dry run: text is copied unchanged"))
	} else {
		tr = newTranslator(cfg)
		logInfo(i18n.T("Translating to %s with %s"), cfg.TargetLanguage, cfg.Model)
	}

	rep := report.New(a.report, cfg.Model, cfg.TargetLanguage)
	rep.Archive = a.archive
	rep.Output = output

	failed := 0
	for _, loc := range found.Found {
		label := loc.Mod + "/" + filepath.Base(loc.Target)
		sum, err := translateDocument(ctx, tr, cfg, loc.Source, loc.Target, label)
		rep.Add(loc.Mod, relPath(work, loc.Source), relPath(work, loc.Target), sum, err)
		if err != nil {
			logError("%s: %v", loc.Mod, err)
			failed++
		}
		if ctx.Err() != nil {
			break
		}
	}

	if err := rep.Save(); err != nil {
		logError(i18n.T("Failed to write report: %v"), err)
	} else if rep.Path() != "" {
		logInfo(i18n.T("Report written to %s"), rep.Path())
	}

	if ctx.Err() != nil {
		logWarning(i18n.T("Working directory kept at %s"), work)
		return ctx.Err()
	}

	logInfo(i18n.T("Packing %s"), output)
	if err := packReplace(ctx, packager, work, output); err != nil {
		logWarning(i18n.T("Working directory kept at %s"), work)
		return fmt.Errorf(i18n.T("packing %s: %w"), output, err)
	}

	if a.keepWorkdir {
		logInfo(i18n.T("Working directory kept at %s"), work)
	} else if err := os.RemoveAll(work); err != nil {
		logWarning(i18n.T("Failed to remove %s: %v"), work, err)
	}

	t := rep.Totals()
	logSuccess(i18n.T("Done: %s (%d entries, %d changed, %d failed)"), output, t.Units, t.Changed, t.Failed)
	if failed > 0 {
		return fmt.Errorf(i18n.N("%d document could not be translated", "%d documents could not be translated", failed), failed)
	}
	return nil
}

// partialPath is the temporary name output is packed to before it replaces
// an existing file. The extension is kept for tools that look at it.
func partialPath(output string) string {
	dir, base := filepath.Split(filepath.Clean(output))
	ext := filepath.Ext(base)
	return filepath.Join(dir, "."+strings.TrimSuffix(base, ext)+".partial"+ext)
}

// packReplace packs dir next to output and moves the result into place, so
// an existing output survives a failed pack.
func packReplace(ctx context.Context, p pak.Packager, dir, output string) error {
	tmp := partialPath(output)
	if err := os.RemoveAll(tmp); err != nil {
		return err
	}
	if err := p.Pack(ctx, dir, tmp); err != nil {
		os.RemoveAll(tmp)
		return err
	}
	if err := os.RemoveAll(output); err != nil {
		os.RemoveAll(tmp)
		return err
	}
	return os.Rename(tmp, output)
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

func relPath(base, p string) string {
	if rel, err := filepath.Rel(base, p); err == nil {
		return filepath.ToSlash(rel)
	}
	return p
}

// ---------------------------------------------------------------------------
// xml (single document)
// ---------------------------------------------------------------------------

func newXMLCmd() *cobra.Command {
	var reportPath string

	cmd := &cobra.Command{
		Use:   "xml <in.xml> <out.xml>",
		Short: i18n.T("Translate a single localization XML file"),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runXML(cmd.Context(), args[0], args[1], reportPath)
		},
	}
	cmd.Flags().StringVar(&reportPath, "report", "", i18n.T("Write a YAML run report to this file"))

	return cmd
}

func runXML(ctx context.Context, in, out, reportPath string) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}

	rep := report.New(reportPath, cfg.Model, cfg.TargetLanguage)
	rep.Output = out

	sum, err := translateDocument(ctx, newTranslator(cfg), cfg, in, out, filepath.Base(out))
	rep.Add("", in, out, sum, err)
	if serr := rep.Save(); serr != nil {
		logError(i18n.T("Failed to write report: %v"), serr)
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}

// ---------------------------------------------------------------------------
// status (read-only)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var packager string

	cmd := &cobra.Command{
		Use:   "status <mod.pak|dir|file.xml|report.yaml>",
		Short: i18n.T("List localization files and entry counts"),
		Long: i18n.T(`Show the localization files found in a mod archive, an unpacked mod folder
or a single XML file, with the number of translatable entries, or summarize
a run report written with --report. Nothing is modified and no API key is
needed.`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), cleanPath(args[0]), packager)
		},
	}
	cmd.Flags().StringVar(&packager, "packager", "", i18n.T("Archive handler: divine or directory (default from config)"))

	return cmd
}

// countEntries parses path and returns its number of translatable entries.
func countEntries(path string) (int, error) {
	doc, err := locafile.ParseFile(path)
	if err != nil {
		return 0, err
	}
	return len(translate.Extract(doc)), nil
}

func runStatus(ctx context.Context, target, packagerKind string) error {
	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	if !info.IsDir() && strings.EqualFold(filepath.Ext(target), ".xml") {
		n, err := countEntries(target)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d\n", target, n)
		return nil
	}
	if ext := strings.ToLower(filepath.Ext(target)); !info.IsDir() && (ext == ".yaml" || ext == ".yml") {
		return showReport(target)
	}

	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}

	root := target
	if !mods.HasMods(target) {
		kind := cfg.Packager
		if packagerKind != "" {
			kind = packagerKind
		}
		p, err := pak.New(kind, cfg.DivinePath)
		if err != nil {
			return err
		}
		tmp, err := os.MkdirTemp("", "bg3loc-status-")
		if err != nil {
			return err
		}
		defer os.RemoveAll(tmp)
		root = filepath.Join(tmp, modName(target))
		if err := p.Unpack(ctx, target, root); err != nil {
			return fmt.Errorf(i18n.T("unpacking %s: %w"), target, err)
		}
	}

	found, err := mods.Discover(root, cfg.SourceLanguage, cfg.TargetLanguage)
	if err != nil {
		return err
	}

	fmt.Println(headingStyle.Render(target))
	fmt.Println(strings.Repeat("─", 60))
	for _, loc := range found.Found {
		fmt.Printf("  %s\n", headingStyle.Render(loc.Mod))
		if n, err := countEntries(loc.Source); err != nil {
			fmt.Printf("    %-14s %s\n", cfg.SourceLanguage, err)
		} else {
			fmt.Printf("    %-14s %d\n", cfg.SourceLanguage, n)
		}
		if n, err := countEntries(loc.Target); err == nil {
			fmt.Printf("    %-14s %d\n", cfg.TargetLanguage, n)
		} else if errors.Is(err, os.ErrNotExist) {
			fmt.Printf("    %-14s %s\n", cfg.TargetLanguage, i18n.T("not translated"))
		} else {
			fmt.Printf("    %-14s %s\n", cfg.TargetLanguage, err)
		}
	}
	for _, m := range found.Missing {
		fmt.Printf("  %s\n    %s\n", headingStyle.Render(m.Mod), fmt.Sprintf(i18n.T("no %s localization"), cfg.SourceLanguage))
	}
	return nil
}

// showReport prints the per-document counts of a saved run report.
func showReport(path string) error {
	rep, err := report.Load(path)
	if err != nil {
		return err
	}
	fmt.Println(headingStyle.Render(fmt.Sprintf("%s  %s  %s", rep.RunID, rep.Model, rep.Target)))
	fmt.Println(strings.Repeat("─", 60))
	for _, d := range rep.Docs {
		name := d.Mod
		if name == "" {
			name = filepath.Base(d.Source)
		}
		if d.Error != "" {
			fmt.Printf("  %-20s %s\n", name, d.Error)
			continue
		}
		fmt.Printf("  %-20s %d/%d/%d\n", name, d.Changed, d.Unchanged, d.Failed)
	}
	t := rep.Totals()
	fmt.Printf(i18n.T("%d entries: %d changed, %d unchanged, %d failed; %d of %d documents failed")+"\n",
		t.Units, t.Changed, t.Unchanged, t.Failed, t.FailedDocuments, t.Documents)
	return nil
}

// ---------------------------------------------------------------------------
// auth (credential store)
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: i18n.T("Manage the stored API key"),
		Long: i18n.T(`Store the API key outside the config file.

The key is kept in $XDG_DATA_HOME/bg3loc/auth.json (mode 0600) under the
profile selected with --profile.

Examples:
  bg3loc auth login                                  Prompt for the key
  bg3loc auth login --key sk-... --base-url https://api.deepseek.com
  bg3loc auth logout
  bg3loc auth status`),
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthStatusCmd(),
	)

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var key, baseURL string

	cmd := &cobra.Command{
		Use:   "login",
		Short: i18n.T("Store an API key"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				if !isInteractive() {
					return errors.New(i18n.T("no key given (use --key)"))
				}
				if err := askKey(&key, &baseURL); err != nil {
					return err
				}
			}
			key = strings.TrimSpace(key)
			if key == "" {
				return errors.New(i18n.T("no API key provided"))
			}
			if err := settings.SetAPIKey(profile, key, strings.TrimSpace(baseURL)); err != nil {
				return fmt.Errorf(i18n.T("saving API key: %w"), err)
			}
			logSuccess(i18n.T("API key saved for profile %s (%s)"), profile, settings.MaskKey(key))
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", i18n.T("API key to store"))
	cmd.Flags().StringVar(&baseURL, "base-url", "", i18n.T("OpenAI-compatible endpoint the key belongs to"))

	return cmd
}

func askKey(key, baseURL *string) error {
	if existing := settings.Get(profile); existing != nil && *baseURL == "" {
		*baseURL = existing.BaseURL
	}
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(i18n.T("API key")).
			EchoMode(huh.EchoModePassword).
			Value(key).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New(i18n.T("the key cannot be empty"))
				}
				return nil
			}),
		huh.NewInput().
			Title(i18n.T("Base URL")).
			Description(i18n.T("Leave empty for api.openai.com")).
			Value(baseURL),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errors.New(i18n.T("aborted"))
		}
		return err
	}
	return nil
}

func newAuthLogoutCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: i18n.T("Remove the stored API key"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				if err := settings.RemoveAll(); err != nil {
					return err
				}
				logSuccess(i18n.T("All stored credentials removed"))
				return nil
			}
			if err := settings.Remove(profile); err != nil {
				return err
			}
			logSuccess(i18n.T("Credentials for profile %s removed"), profile)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, i18n.T("Remove every profile"))

	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"list", "ls"},
		Short:   i18n.T("Show stored credentials"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := settings.Load()
			fmt.Printf("%s %s\n", headingStyle.Render(i18n.T("Credentials")), settings.FilePath())
			fmt.Println(strings.Repeat("─", 60))
			if len(store) == 0 {
				fmt.Printf("  %s\n", i18n.T("none stored"))
			}
			names := make([]string, 0, len(store))
			for name := range store {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				info := store[name]
				line := fmt.Sprintf("  %-10s %s", name, settings.MaskKey(info.Key))
				if info.BaseURL != "" {
					line += "  " + info.BaseURL
				}
				if info.Saved > 0 {
					line += "  " + time.Unix(info.Saved, 0).Format(time.DateTime)
				}
				fmt.Println(line)
			}

			cfg, _, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if key, source := settings.ResolveAPIKey(profile, apiKeyFlag, cfg.APIKey); key != "" {
				fmt.Printf("\n"+i18n.T("Active key: %s (from %s)")+"\n", settings.MaskKey(key), source)
			} else {
				logWarning(i18n.T("No API key configured; run 'bg3loc auth login'"))
			}
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// config
// ---------------------------------------------------------------------------

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: i18n.T("Create or show the configuration"),
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: i18n.T("Write a commented default bg3loc.yaml"),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileName
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteTemplate(path, force); err != nil {
				if errors.Is(err, config.ErrExists) {
					return fmt.Errorf(i18n.T("%s already exists (use --force to overwrite)"), path)
				}
				return err
			}
			logSuccess(i18n.T("Wrote %s"), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, i18n.T("Overwrite an existing file"))

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: i18n.T("Print the effective configuration"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(false)
			if err != nil {
				return err
			}
			if cfg.APIKey != "" {
				cfg.APIKey = settings.MaskKey(cfg.APIKey)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			os.Stdout.Write(data)
			return nil
		},
	}
}
