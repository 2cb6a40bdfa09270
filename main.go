// i18nedit: translation key editor for JSON, YAML, TOML, Java properties and
// Android strings.xml resource files.
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
	"strings"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/minios-linux/i18nedit/engine"
	"github.com/minios-linux/i18nedit/i18n"
	"github.com/minios-linux/i18nedit/keypath"
	"github.com/minios-linux/i18nedit/nstree"
	"github.com/minios-linux/i18nedit/resource"
	"github.com/minios-linux/i18nedit/session"
	"github.com/minios-linux/i18nedit/settings"
	"github.com/minios-linux/i18nedit/update"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global state
// ---------------------------------------------------------------------------

var (
	rootDir string
	verbose bool

	// Set up by the root command before any subcommand runs.
	logger  = slog.New(slog.DiscardHandler)
	prefs   = settings.Default()
	updates <-chan update.Info
	checker *update.Checker
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "i18nedit",
		Short: "Edit translation keys across all locale files of a project",
		Long: `i18nedit edits translation keys across all locale files of a project.

A resource directory holds one file per locale, either flat (i18n/en.json,
i18n/de.json) or nested (i18n/en/translations.json). Keys are dot-separated
paths; adding, removing, renaming or duplicating a key applies the change to
every locale file at once.

Supported formats: JSON, YAML, TOML, Java .properties, Android strings.xml.

Commands:
  status      Show detected resources and translation statistics
  tree        Show the key hierarchy
  get/set     Read or write the value of a key
  add/remove  Create or delete a key in every locale
  rename      Move a key (and everything below it)
  duplicate   Copy a key (and everything below it)
  locale      Add a locale file
  shell       Interactive editing session`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			reportUpdate()
		},
	}

	// Global persistent flags, inherited by all subcommands
	root.PersistentFlags().StringVarP(&rootDir, "dir", "d", ".", "Resource directory")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newStatusCmd(),
		newOpenCmd(),
		newTreeCmd(),
		newGetCmd(),
		newSetCmd(),
		newAddCmd(),
		newRemoveCmd(),
		newRenameCmd(),
		newDuplicateCmd(),
		newFindCmd(),
		newLocaleCmd(),
		newCheckCmd(),
		newShellCmd(),
		newUpdateCheckCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if checker != nil {
		checker.Close()
	}
	if err != nil {
		logError("%v", err)
		stop()
		os.Exit(1)
	}
}

// setup installs the diagnostics logger, loads the user settings and starts
// the background release check.
func setup(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))

	s, err := settings.Load()
	if err != nil {
		logWarning(i18n.T("Ignoring settings: %v"), err)
		s = settings.Default()
	}
	prefs = s

	switch cmd.Name() {
	case "version", "update-check":
		return nil
	}
	if prefs.NoUpdateCheck || checker != nil {
		return nil
	}
	checker = update.NewChecker(version, prefs.ReleasesURL, prefs.UpdateTimeout,
		update.WithLogger(logger.With("component", "update")))
	updates = checker.Start(cmd.Context())
	return nil
}

// reportUpdate prints a notice when the background check has already found
// a newer release. It never waits for the check.
func reportUpdate() {
	if updates == nil {
		return
	}
	select {
	case info, ok := <-updates:
		if ok && info.Newer {
			logInfo(i18n.T("A new version is available: %s (you have %s)"), info.Latest.Tag, info.Current)
			if info.Latest.URL != "" {
				logInfo("  %s", info.Latest.URL)
			}
		}
	default:
	}
	updates = nil
}

// ---------------------------------------------------------------------------
// Session helpers
// ---------------------------------------------------------------------------

// openSession imports dir (or --dir when empty) and reports what could not
// be loaded. The directory is remembered in the history.
func openSession(cmd *cobra.Command, dir string, opts ...session.Option) (*session.Session, error) {
	if dir == "" {
		dir = rootDir
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	fs := osfs.New(abs)
	opts = append([]session.Option{session.WithLogger(logger)}, opts...)
	s, report, err := session.Open(cmd.Context(), fs, ".", opts...)
	if err != nil {
		return nil, fmt.Errorf(i18n.T("cannot open %s: %w"), abs, err)
	}
	printImportReport(report)
	if len(s.Stores()) == 0 && len(report.Failures) == 0 {
		logWarning(i18n.T("No resource files found in %s"), abs)
	}

	prefs.AddHistory(abs)
	if err := settings.Update(func(st *settings.Settings) { st.AddHistory(abs) }); err != nil {
		logger.Debug("history not saved", "error", err)
	}
	return s, nil
}

func printImportReport(r *session.ImportReport) {
	for _, f := range r.Failures {
		logWarning(i18n.T("Skipped %s: %v"), f.Path, f.Err)
	}
	for path, keys := range r.InvalidKeys {
		logWarning(i18n.N("%s: ignored %d invalid key: %s", "%s: ignored %d invalid keys: %s", len(keys)),
			path, len(keys), strings.Join(keys, ", "))
	}
	for _, path := range r.Skipped {
		logger.Debug("file not taken", "path", path)
	}
}

// saveSession writes the changed resources and reports each failure.
func saveSession(s *session.Session) error {
	if !s.Dirty() {
		return nil
	}
	err := s.Save(resource.MarshalOptions{Minify: prefs.MinifyOutput})
	if err == nil {
		logSuccess(i18n.T("Saved"))
		return nil
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		logError("%v", e)
	}
	return fmt.Errorf(i18n.N("%d resource could not be saved", "%d resources could not be saved", len(errs)), len(errs))
}

func parseKey(raw string) (keypath.KeyPath, error) {
	k, err := keypath.Parse(raw)
	if err != nil {
		return keypath.KeyPath{}, err
	}
	return k, nil
}

// confirmPolicy picks the answer to Replace conflicts: --yes and --no
// answer up front, otherwise the user is asked on in.
func confirmPolicy(yes, no bool, in *bufio.Scanner, out io.Writer) engine.ConfirmFunc {
	switch {
	case yes:
		return engine.AlwaysProceed
	case no:
		return engine.AlwaysAbort
	}
	return promptConfirm(in, out)
}

func promptConfirm(in *bufio.Scanner, out io.Writer) engine.ConfirmFunc {
	return func(ctx context.Context, oldPath, newPath keypath.KeyPath, kind nstree.Conflict) (bool, error) {
		fmt.Fprintf(out, i18n.T("%q already exists and will be replaced by %q. Continue? [y/N] "),
			newPath.String(), oldPath.String())
		if !in.Scan() {
			fmt.Fprintln(out)
			return false, in.Err()
		}
		return isYes(in.Text()), nil
	}
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// status / open (read-only: resources + translation stats)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show detected resources and translation statistics",
		Long: `Show the detected layout of the resource directory and how many keys
each locale has translated. Does not modify any files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, "")
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), s)
			return nil
		},
	}

	return cmd
}

// recentDir returns the most recently opened directory, or "" for the
// --dir default.
func recentDir() string {
	if last, ok := prefs.LastDir(); ok {
		return last
	}
	return ""
}

func newOpenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open [DIR]",
		Short: "Show a resource directory, defaulting to the most recent one",
		Long: `Like status, but takes the directory as an argument. Without an argument
(and without --dir) the most recently opened directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			switch {
			case len(args) == 1:
				dir = args[0]
			case !cmd.Flags().Changed("dir"):
				dir = recentDir()
			}
			s, err := openSession(cmd, dir)
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), s)
			return nil
		},
	}

	return cmd
}

func printStatus(w io.Writer, s *session.Session) {
	p := s.Project()

	fmt.Fprintf(w, "\n%s%s%s\n", colorBlue, i18n.T("Resources"), colorReset)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "  %-12s %s\n", i18n.T("Layout:"), p.Structure)
	fmt.Fprintf(w, "  %-12s %s\n", i18n.T("Format:"), p.Format)
	fmt.Fprintf(w, "  %-12s %d\n", i18n.T("Keys:"), len(s.Tree().Keys()))
	if verbose {
		fmt.Fprintf(w, "  %-12s %s\n", i18n.T("Session:"), s.ID())
	}
	fmt.Fprintln(w)

	if len(s.Stores()) == 0 {
		return
	}

	fmt.Fprintf(w, "%-8s %-24s %-32s %s\n", i18n.T("Locale"), i18n.T("Language"), i18n.T("File"), i18n.T("Translated"))
	fmt.Fprintln(w, strings.Repeat("─", 80))
	for _, st := range s.Stores() {
		total, translated := st.Stats()
		percent := 0
		if total > 0 {
			percent = translated * 100 / total
		}
		name := strings.TrimSpace(st.Locale().Flag() + " " + st.Locale().Name())
		fmt.Fprintf(w, "%-8s %-24s %-32s %s %d/%d\n",
			st.Locale().ID, name, st.Path(), progressBar(percent, 20), translated, total)
	}
	fmt.Fprintln(w)
}

// progressBar renders percent as a colored bar of the given width.
func progressBar(percent, width int) string {
	percent = max(0, min(100, percent))
	filled := percent * width / 100

	color := colorRed
	switch {
	case percent >= 100:
		color = colorGreen
	case percent >= 50:
		color = colorYellow
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s%s%s %3d%%", color, bar, colorReset, percent)
}

// ---------------------------------------------------------------------------
// tree / get / find (read-only)
// ---------------------------------------------------------------------------

func newTreeCmd() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "tree [KEY]",
		Short: "Show the key hierarchy",
		Long: `Print the namespace tree built from the keys of all locales. With KEY,
only the subtree below it is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, "")
			if err != nil {
				return err
			}
			start := s.Tree().Root()
			if len(args) == 1 {
				n, ok := s.Find(args[0])
				if !ok {
					return fmt.Errorf(i18n.T("key %q not found"), args[0])
				}
				start = n
			}
			printTree(cmd.OutOrStdout(), s, start, func(n nstree.Node, level int) bool {
				return depth <= 0 || level < depth
			})
			return nil
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 0, "Maximum depth to print (0 = unlimited)")

	return cmd
}

// printTree prints the children of start. expand decides whether a group at
// the given level is descended into.
func printTree(w io.Writer, s *session.Session, start nstree.Node, expand func(n nstree.Node, level int) bool) {
	total := len(s.Stores())
	var walk func(n nstree.Node, level int)
	walk = func(n nstree.Node, level int) {
		for c := range n.Children() {
			indent := strings.Repeat("  ", level)
			if c.IsLeaf() {
				filled := 0
				for _, v := range s.Values(c.Path()) {
					if v.Present && v.Value != "" {
						filled++
					}
				}
				fmt.Fprintf(w, "%s• %s  [%d/%d]\n", indent, c.Path().LastSegment(), filled, total)
				continue
			}
			if !expand(c, level) {
				fmt.Fprintf(w, "%s▸ %s (%d)\n", indent, c.Path().LastSegment(), c.ChildCount())
				continue
			}
			fmt.Fprintf(w, "%s▾ %s\n", indent, c.Path().LastSegment())
			walk(c, level+1)
		}
	}
	if !start.IsRoot() {
		fmt.Fprintf(w, "%s\n", start.Key())
		walk(start, 1)
		return
	}
	walk(start, 0)
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Show the value of a key in every locale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, "")
			if err != nil {
				return err
			}
			return printValues(cmd.OutOrStdout(), s, args[0])
		},
	}

	return cmd
}

func printValues(w io.Writer, s *session.Session, raw string) error {
	n, ok := s.Find(raw)
	if !ok {
		return fmt.Errorf(i18n.T("key %q not found"), raw)
	}
	if !n.IsLeaf() {
		fmt.Fprintf(w, i18n.T("%s is a group with %d children\n"), n.Key(), n.ChildCount())
		return nil
	}
	for _, v := range s.Values(n.Path()) {
		switch {
		case !v.Present:
			fmt.Fprintf(w, "%-8s %s%s%s\n", v.Locale.ID, colorRed, i18n.T("(missing)"), colorReset)
		case v.Value == "":
			fmt.Fprintf(w, "%-8s %s%s%s\n", v.Locale.ID, colorYellow, i18n.T("(empty)"), colorReset)
		default:
			fmt.Fprintf(w, "%-8s %s\n", v.Locale.ID, v.Value)
		}
	}
	return nil
}

func newFindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find KEY",
		Short: "Report whether a key exists",
		Long:  `Exit with status 0 when KEY is a node of the key tree, 1 otherwise.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, "")
			if err != nil {
				return err
			}
			return findKey(cmd.OutOrStdout(), s, args[0])
		},
	}

	return cmd
}

func findKey(w io.Writer, s *session.Session, raw string) error {
	n, ok := s.Find(raw)
	if !ok {
		return fmt.Errorf(i18n.T("key %q not found"), raw)
	}
	kind := i18n.T("group")
	if n.IsLeaf() {
		kind = i18n.T("key")
	}
	fmt.Fprintf(w, "%s (%s)\n", n.Key(), kind)
	return nil
}

// ---------------------------------------------------------------------------
// set / add / remove / rename / duplicate (mutating; saved immediately)
// ---------------------------------------------------------------------------

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set KEY LOCALE VALUE",
		Short: "Set the value of a key in one locale",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, "")
			if err != nil {
				return err
			}
			if err := setValue(s, args[0], args[1], args[2]); err != nil {
				return err
			}
			return saveSession(s)
		},
	}

	return cmd
}

func setValue(s *session.Session, raw, loc, value string) error {
	k, err := parseKey(raw)
	if err != nil {
		return err
	}
	return s.SetValue(k, loc, value)
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add KEY",
		Short: "Add a key with an empty value to every locale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, "")
			if err != nil {
				return err
			}
			if err := addKey(cmd.Context(), s, args[0]); err != nil {
				return err
			}
			return saveSession(s)
		},
	}

	return cmd
}

func addKey(ctx context.Context, s *session.Session, raw string) error {
	k, err := parseKey(raw)
	if err != nil {
		return err
	}
	added, err := s.AddKey(ctx, k)
	if err != nil {
		return err
	}
	switch {
	case added:
		logSuccess(i18n.T("Added %s"), k)
	case len(s.Stores()) == 0:
		logWarning(i18n.T("No resources to add %s to"), k)
	default:
		logInfo(i18n.T("%s already exists"), k)
	}
	return nil
}

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove KEY",
		Aliases: []string{"rm"},
		Short:   "Remove a key and everything below it from every locale",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, "")
			if err != nil {
				return err
			}
			if err := removeKey(cmd.Context(), s, args[0]); err != nil {
				return err
			}
			return saveSession(s)
		},
	}

	return cmd
}

func removeKey(ctx context.Context, s *session.Session, raw string) error {
	k, err := parseKey(raw)
	if err != nil {
		return err
	}
	removed, err := s.RemoveKey(ctx, k)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf(i18n.T("key %q not found"), raw)
	}
	logSuccess(i18n.T("Removed %s"), k)
	return nil
}

func newRenameCmd() *cobra.Command {
	return newTransferCmd("rename OLD NEW", "mv",
		"Move a key and everything below it to a new path",
		(*session.Session).RenameKey, i18n.T("Renamed %s to %s"))
}

func newDuplicateCmd() *cobra.Command {
	return newTransferCmd("duplicate OLD NEW", "cp",
		"Copy a key and everything below it to a new path",
		(*session.Session).DuplicateKey, i18n.T("Copied %s to %s"))
}

type transferFunc func(s *session.Session, ctx context.Context, oldPath, newPath keypath.KeyPath) (engine.Result, error)

func newTransferCmd(use, alias, short string, op transferFunc, done string) *cobra.Command {
	var yes, no bool

	cmd := &cobra.Command{
		Use:     use,
		Aliases: []string{alias},
		Short:   short,
		Long: short + `.

When the target exists and both source and target are groups, the source is
merged into it. If either side is a leaf the target is replaced, which has to
be confirmed interactively or up front with --yes or --no.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if yes && no {
				return errors.New(i18n.T("--yes and --no are mutually exclusive"))
			}
			in := bufio.NewScanner(cmd.InOrStdin())
			confirm := confirmPolicy(yes, no, in, cmd.ErrOrStderr())
			s, err := openSession(cmd, "", session.WithConfirm(confirm))
			if err != nil {
				return err
			}
			if err := transferKey(cmd.Context(), s, op, args[0], args[1], done); err != nil {
				return err
			}
			return saveSession(s)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Replace an existing target without asking")
	cmd.Flags().BoolVarP(&no, "no", "n", false, "Never replace an existing target")

	return cmd
}

func transferKey(ctx context.Context, s *session.Session, op transferFunc, from, to, done string) error {
	oldPath, err := parseKey(from)
	if err != nil {
		return err
	}
	newPath, err := parseKey(to)
	if err != nil {
		return err
	}
	res, err := op(s, ctx, oldPath, newPath)
	switch {
	case errors.Is(err, engine.ErrAborted):
		return fmt.Errorf(i18n.T("%s was left unchanged: %w"), newPath, err)
	case err != nil:
		return err
	case !res.Applied:
		logInfo(i18n.T("Nothing to do"))
		return nil
	}
	logSuccess(done, oldPath, newPath)
	if res.Conflict == nstree.ConflictMerge {
		logInfo(i18n.T("Merged into the existing %s"), newPath)
	}
	return nil
}

// ---------------------------------------------------------------------------
// locale (add a resource file)
// ---------------------------------------------------------------------------

func newLocaleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locale",
		Short: "Manage locale files",
	}

	cmd.AddCommand(newLocaleAddCmd(), newLocaleListCmd())

	return cmd
}

func newLocaleAddCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "add TAG",
		Short: "Create a resource file for a new locale",
		Long: `Create a resource file for TAG (e.g. de, pt_BR, sr-Latn) in the project's
layout, containing every existing key with an empty value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, "")
			if err != nil {
				return err
			}
			return addLocale(s, args[0], format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "File format: "+formatNames()+" (default: the project's)")

	return cmd
}

func addLocale(s *session.Session, tag, format string) error {
	st, err := s.AddLocale(tag, resource.Format(format), resource.MarshalOptions{Minify: prefs.MinifyOutput})
	if err != nil {
		return err
	}
	logSuccess(i18n.T("Created %s (%s)"), st.Path(), st.Locale().EnglishName())
	return nil
}

func newLocaleListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the locales of the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, "")
			if err != nil {
				return err
			}
			for _, st := range s.Stores() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", st.Locale().ID, st.Locale().EnglishName(), st.Path())
			}
			return nil
		},
	}

	return cmd
}

func formatNames() string {
	var names []string
	for _, f := range resource.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// ---------------------------------------------------------------------------
// check (verify every locale agrees with the key tree)
// ---------------------------------------------------------------------------

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the key tree and report keys missing from locales",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, "")
			if err != nil {
				return err
			}
			return checkSession(cmd.OutOrStdout(), s)
		},
	}

	return cmd
}

func checkSession(w io.Writer, s *session.Session) error {
	if err := s.Verify(); err != nil {
		return err
	}
	gaps := 0
	for _, k := range s.Tree().Leaves() {
		var missing []string
		for _, v := range s.Values(k) {
			if !v.Present {
				missing = append(missing, v.Locale.ID)
			}
		}
		if len(missing) > 0 {
			gaps++
			fmt.Fprintf(w, "%s: %s %s\n", k, i18n.T("missing in"), strings.Join(missing, ", "))
		}
	}
	if gaps > 0 {
		logWarning(i18n.N("%d key is missing from some locales", "%d keys are missing from some locales", gaps), gaps)
		return nil
	}
	logSuccess(i18n.T("All locales have every key"))
	return nil
}

// ---------------------------------------------------------------------------
// update-check / version
// ---------------------------------------------------------------------------

func newUpdateCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-check",
		Short: "Check whether a newer release is available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := update.NewChecker(version, prefs.ReleasesURL, prefs.UpdateTimeout,
				update.WithLogger(logger.With("component", "update")))
			info, ok := c.Check(cmd.Context())
			switch {
			case !ok:
				logWarning(i18n.T("Could not determine the latest release"))
			case info.Newer:
				logInfo(i18n.T("A new version is available: %s (you have %s)"), info.Latest.Tag, info.Current)
				if info.Latest.URL != "" {
					logInfo("  %s", info.Latest.URL)
				}
			default:
				logSuccess(i18n.T("You are running the latest version (%s)"), info.Latest.Tag)
			}
			return nil
		},
	}

	return cmd
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "i18nedit version %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit:    %s\n", commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:     %s\n", date)
		},
	}

	return cmd
}
