package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Hanaasagi/filterlines/cmd"
	"github.com/Hanaasagi/filterlines/internal"
	"github.com/Hanaasagi/filterlines/internal/logger"
	"github.com/Hanaasagi/filterlines/pkg/clipboard"
	"github.com/Hanaasagi/filterlines/pkg/filter"
	"github.com/Hanaasagi/filterlines/pkg/fold"
	"github.com/Hanaasagi/filterlines/pkg/matcher"
	"github.com/adrg/xdg"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const (
	appName     = "filterlines"
	defaultSize = 4096
)

var (
	Version     = "0.1.0"
	CommitSha   = "unknown"
	FullVersion = Version + "-" + CommitSha
)

var zeroMatchesStyle = color.New(color.FgYellow)

// AppConfig holds the command line state
type AppConfig struct {
	configPath  string
	stateDir    string
	showVersion bool
	search      SearchFlags
	filter      FilterFlags
	fold        FoldFlags

	cfg    *Config
	stdout *os.File
	logs   io.Closer
}

// SearchFlags groups flags shared by filter and fold
type SearchFlags struct {
	regex         bool
	invert        bool
	caseSensitive bool
	ignoreCase    bool
	last          bool
	stripANSI     bool
}

// FilterFlags groups flags of the filter command
type FilterFlags struct {
	inPlace   bool
	separator string
	output    string
	watch     bool
	copy      bool
	include   []string
}

// FoldFlags groups flags of the fold command
type FoldFlags struct {
	interactive bool
	list        bool
	marker      string
}

func newAppConfig() *AppConfig {
	return &AppConfig{
		configPath: filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		stateDir:   filepath.Join(xdg.StateHome, appName),
		stdout:     os.Stdout,
	}
}

func (app *AppConfig) historyPath() string {
	return filepath.Join(app.stateDir, "history.toml")
}

// setup loads the config file and starts logging
func (app *AppConfig) setup(colorFlag string) error {
	cfg, err := LoadConfigFromFile(app.configPath)
	if err != nil {
		return err
	}
	app.cfg = cfg

	level := cfg.Log.Level
	if env := os.Getenv(logger.EnvLevel); env != "" {
		level = env
	}
	if internal.IsDebugMode() {
		level = "debug"
	}

	logs, err := logger.InitLogger(filepath.Join(app.stateDir, appName+".log"), level)
	if err != nil {
		return err
	}
	app.logs = logs

	mode := cfg.Output.Color
	if colorFlag != "" {
		mode = colorFlag
	}
	return internal.SetColorMode(mode, internal.IsTerminal(app.stdout))
}

func (app *AppConfig) close() {
	if app.logs != nil {
		app.logs.Close() // nolint: errcheck
		app.logs = nil
	}
}

// searchOptions merges the config file with the command line flags
func (app *AppConfig) searchOptions(c *cobra.Command) (internal.Options, matcher.Kind) {
	opts := app.cfg.Options()

	kind := matcher.Literal
	if app.search.regex {
		kind = matcher.Regex
	}
	if c.Flags().Changed("invert") {
		opts.InvertSearch = app.search.invert
	}
	if app.search.caseSensitive {
		opts.CaseSensitiveStringSearch = true
		opts.CaseSensitiveRegexSearch = true
	}
	if app.search.ignoreCase {
		opts.CaseSensitiveStringSearch = false
		opts.CaseSensitiveRegexSearch = false
	}
	if c.Flags().Changed("in-place") {
		opts.UseNewBufferForResults = !app.filter.inPlace
	}

	return opts, kind
}

// needleAndInputs splits the positional arguments and resolves the
// needle against the search history
func (app *AppConfig) needleAndInputs(args []string, preserve bool) (string, []string, error) {
	history := internal.NewFileHistory(app.historyPath())

	if app.search.last {
		needle, err := history.Latest()
		if err != nil {
			return "", nil, fmt.Errorf("reusing last search: %w", err)
		}
		return needle, args, nil
	}

	if len(args) == 0 {
		return "", nil, errors.New("missing search pattern")
	}

	needle, err := internal.ResolveNeedle(history, args[0], false, preserve)
	if err != nil {
		slog.Warn("Failed to remember search", "error", err)
	}
	return needle, args[1:], nil
}

// openOutput returns the writer for results and a function flushing it
func (app *AppConfig) openOutput(c *cobra.Command) (io.Writer, func() error, error) {
	if app.filter.output == "" {
		return c.OutOrStdout(), func() error { return nil }, nil
	}

	file, err := os.Create(app.filter.output)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}

	writer := bufio.NewWriterSize(file, defaultSize)
	return writer, func() error {
		if err := writer.Flush(); err != nil {
			file.Close() // nolint: errcheck
			return fmt.Errorf("writing output file: %w", err)
		}
		return file.Close()
	}, nil
}

// writeOutcomes prints or writes back every outcome and returns the text
// of the non-empty results
func writeOutcomes(c *cobra.Command, w io.Writer, outcomes []*internal.Outcome, mode filter.Mode, headers bool) ([]string, error) {
	var copied []string

	for _, out := range outcomes {
		slog.Info("Filtered input", "input", out.Input.Name, "mode", mode,
			"kept", out.Result.Kept, "total", out.Result.Total)

		if mode == filter.InPlace && out.Input.Writable() {
			if err := internal.WriteBack(out.Input, out.Output); err != nil {
				return nil, err
			}
			fmt.Fprintf(c.ErrOrStderr(), "%s: kept %d of %d lines\n", out.Input.Name, out.Result.Kept, out.Result.Total)
			continue
		}

		text := out.Output
		if mode == filter.NewBuffer && out.Result.Empty() {
			text = zeroMatchesStyle.Sprint(text)
		} else {
			copied = append(copied, text)
		}

		sink := internal.NewWriterSink(w)
		if headers {
			sink = sink.WithHeader(out.Input.Name)
		}
		if err := sink.CreateDocument(text, out.Meta); err != nil {
			return nil, err
		}
	}

	return copied, nil
}

func runFilter(c *cobra.Command, app *AppConfig, args []string) error {
	opts, kind := app.searchOptions(c)

	needle, files, err := app.needleAndInputs(args, opts.PreserveSearch)
	if err != nil {
		return err
	}

	includes := slices.Concat(app.cfg.Filter.Include, app.filter.include)
	paths, err := internal.ExpandInputs(files, includes)
	if err != nil {
		return err
	}

	req := internal.FilterRequest{
		Needle:    needle,
		Kind:      kind,
		Separator: app.filter.separator,
		WordWrap:  app.cfg.Output.WordWrap,
	}

	once := func(ctx context.Context) error {
		outcomes, err := internal.FilterAll(ctx, paths, opts, req, app.search.stripANSI)
		if err != nil {
			return err
		}

		w, done, err := app.openOutput(c)
		if err != nil {
			return err
		}

		copied, err := writeOutcomes(c, w, outcomes, opts.Mode(), len(paths) > 1 || app.filter.watch)
		if err != nil {
			done() // nolint: errcheck
			return err
		}
		if err := done(); err != nil {
			return err
		}

		if app.filter.copy && len(copied) > 0 {
			if err := clipboard.New(clipboard.WithOutput(c.ErrOrStderr())).Copy(strings.Join(copied, "")); err != nil {
				return fmt.Errorf("copying results: %w", err)
			}
		}
		return nil
	}

	if app.filter.watch {
		if opts.Mode() == filter.InPlace {
			return errors.New("--watch cannot be combined with in-place filtering")
		}
		if slices.Contains(paths, internal.StdinName) {
			return errors.New("--watch needs file inputs")
		}
	}

	ctx := c.Context()
	if err := once(ctx); err != nil {
		return err
	}
	if !app.filter.watch {
		return nil
	}

	watcher, err := internal.NewWatcher(paths, internal.DefaultDebounce)
	if err != nil {
		return err
	}

	slog.Info("Watching inputs", "paths", paths)
	return watcher.Run(ctx, func(path string) {
		slog.Debug("Input changed", "path", path)
		if err := once(ctx); err != nil {
			slog.Error("Rerun failed", "error", err)
			fmt.Fprintln(c.ErrOrStderr(), err)
		}
	})
}

func runFold(c *cobra.Command, app *AppConfig, args []string) error {
	opts, kind := app.searchOptions(c)

	needle, files, err := app.needleAndInputs(args, opts.PreserveSearch)
	if err != nil {
		return err
	}
	if len(files) > 1 {
		return errors.New("fold takes at most one input")
	}

	path := internal.StdinName
	if len(files) == 1 {
		path = files[0]
	}

	in, err := internal.ReadInput(path)
	if err != nil {
		return err
	}
	text := internal.PrepareText(in.Text, app.search.stripANSI)

	runs, err := internal.RunFold(text, opts, needle, kind)
	if err != nil {
		return err
	}

	format := app.cfg.Fold.Marker
	if app.fold.marker != "" {
		format = app.fold.marker
	}
	markerColor, err := internal.GetColor(app.cfg.Fold.MarkerColor)
	if err != nil {
		return err
	}
	marker := fold.CountMarker(format)

	w := c.OutOrStdout()
	switch {
	case app.fold.list:
		for _, r := range runs {
			fmt.Fprintf(w, "%d\t%d\t%d\n", r.Start, r.End, r.Len())
		}
		return nil
	case app.fold.interactive:
		if !internal.IsTerminal(app.stdout) {
			return errors.New("--interactive needs a terminal")
		}
		pager := internal.NewPager(in.Name, text, runs, marker, internal.DefaultPagerStyles(markerColor))
		return pager.Present()
	default:
		_, err := io.WriteString(w, fold.Render(text, runs, func(r fold.Run) string {
			return markerColor.Sprint(marker(r))
		}))
		return err
	}
}

func runLast(c *cobra.Command, app *AppConfig) error {
	needle, err := internal.NewFileHistory(app.historyPath()).Latest()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.OutOrStdout(), needle)
	return nil
}

func addSearchFlags(c *cobra.Command, flags *SearchFlags) {
	c.Flags().BoolVarP(&flags.regex, "regex", "x", false, "Treat the pattern as a regular expression")
	c.Flags().BoolVarP(&flags.invert, "invert", "v", false, "Select lines that do not match")
	c.Flags().BoolVarP(&flags.caseSensitive, "case-sensitive", "s", false, "Match case")
	c.Flags().BoolVarP(&flags.ignoreCase, "ignore-case", "I", false, "Ignore case")
	c.Flags().BoolVar(&flags.last, "last", false, "Reuse the last remembered search; all arguments are inputs")
	c.Flags().BoolVar(&flags.stripANSI, "strip-ansi", false, "Remove ANSI escape sequences before matching")
	c.MarkFlagsMutuallyExclusive("case-sensitive", "ignore-case")
}

func newRootCmd(app *AppConfig) *cobra.Command {
	var colorFlag string

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Filter or fold lines matching a string or regex",
		Long: color.New(color.FgHiMagenta).Sprintf(
			"Keep, delete or fold the lines of a text that match a search. %s",
			color.New(color.FgBlue).Sprintf("(%s)", FullVersion),
		),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			return app.setup(colorFlag)
		},
		RunE: func(c *cobra.Command, args []string) error {
			if app.showVersion {
				fmt.Fprintf(c.OutOrStdout(), "%s version: %s\n", appName, FullVersion)
				return nil
			}
			return c.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", app.configPath, "Path to the TOML config file")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "", "Color output: auto, always or never")
	rootCmd.Flags().BoolVarP(&app.showVersion, "version", "V", false, "Print version and exit")

	filterCmd := &cobra.Command{
		Use:   "filter PATTERN [FILE|DIR...]",
		Short: "Keep the lines matching PATTERN",
		Example: "  filterlines filter error app.log\n" +
			"  filterlines filter -x -v '^DEBUG' logs/ --include '*.log.gz'\n" +
			"  filterlines filter -S '\\n\\n' TODO notes.md",
		RunE: func(c *cobra.Command, args []string) error {
			return runFilter(c, app, args)
		},
	}
	addSearchFlags(filterCmd, &app.search)
	filterCmd.Flags().BoolVar(&app.filter.inPlace, "in-place", false, "Delete non-matching lines from the input files")
	filterCmd.Flags().StringVarP(&app.filter.separator, "separator", "S", "", "Split the input with this regex instead of lines")
	filterCmd.Flags().StringVarP(&app.filter.output, "output", "o", "", "Write results to this file")
	filterCmd.Flags().BoolVarP(&app.filter.watch, "watch", "w", false, "Rerun when the inputs change")
	filterCmd.Flags().BoolVar(&app.filter.copy, "copy", false, "Copy results to the clipboard")
	filterCmd.Flags().StringArrayVar(&app.filter.include, "include", nil, "Glob selecting files inside directory inputs")

	foldCmd := &cobra.Command{
		Use:   "fold PATTERN [FILE]",
		Short: "Fold away the lines not matching PATTERN",
		RunE: func(c *cobra.Command, args []string) error {
			return runFold(c, app, args)
		},
	}
	addSearchFlags(foldCmd, &app.search)
	foldCmd.Flags().BoolVarP(&app.fold.interactive, "interactive", "i", false, "Browse the folds in a pager")
	foldCmd.Flags().BoolVarP(&app.fold.list, "list", "l", false, "Print start, end and line count of every fold")
	foldCmd.Flags().StringVar(&app.fold.marker, "marker", "", "Marker format for folded regions, %d is the line count")

	lastCmd := &cobra.Command{
		Use:   "last",
		Short: "Print the last remembered search",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runLast(c, app)
		},
	}

	rootCmd.AddCommand(filterCmd, foldCmd, lastCmd)

	rootCmd.SetHelpTemplate(cmd.HelpTemplate)
	rootCmd.SetUsageFunc(func(c *cobra.Command) error {
		return cmd.ColorUsageFunc(c.OutOrStderr(), c)
	})

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := newAppConfig()
	defer app.close()

	if err := newRootCmd(app).ExecuteContext(ctx); err != nil {
		slog.Error("Error executing command", "error", err)
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		stop()
		app.close()
		os.Exit(1)
	}
}
