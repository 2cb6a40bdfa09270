package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minios-linux/i18nedit/i18n"
	"github.com/minios-linux/i18nedit/nstree"
	"github.com/minios-linux/i18nedit/session"
	"github.com/minios-linux/i18nedit/settings"
)

// ---------------------------------------------------------------------------
// shell (interactive session; changes are kept until "save")
// ---------------------------------------------------------------------------

func newShellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive editing session",
		Long: `Open the resource directory and read editing commands from standard input.
Changes stay in memory until "save"; leaving with unsaved changes asks
whether to save them first. Type "help" for the list of commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sh := &shell{
				cmd:      cmd,
				in:       bufio.NewScanner(cmd.InOrStdin()),
				out:      cmd.OutOrStdout(),
				expanded: make(map[string]bool),
			}
			return sh.run()
		},
	}

	return cmd
}

type shell struct {
	cmd *cobra.Command
	in  *bufio.Scanner
	out io.Writer
	s   *session.Session

	// Restored from and persisted to the user settings.
	selected string
	expanded map[string]bool
}

var errQuit = errors.New("quit")

const shellHelp = `Commands:
  status                      show resources and statistics
  tree [KEY]                  show the key tree (expanded groups only)
  expand KEY | collapse KEY   expand or collapse a group in "tree"
  get KEY                     show a key in every locale and select it
  set KEY LOCALE VALUE...     set a value
  add KEY                     add a key to every locale
  remove KEY                  remove a key and its subtree
  rename OLD NEW              move a key and its subtree
  duplicate OLD NEW           copy a key and its subtree
  find KEY                    report whether a key exists
  locale add TAG [FORMAT]     create a resource for a new locale
  check                       verify the key tree
  open [DIR]                  switch to DIR or the most recent directory
  reload                      discard changes and read the files again
  save                        write the changed resources
  quit                        leave (asks to save unsaved changes)
`

func (sh *shell) run() error {
	if err := sh.open(""); err != nil {
		return err
	}
	sh.restore()

	for {
		fmt.Fprint(sh.out, sh.prompt())
		if !sh.in.Scan() {
			fmt.Fprintln(sh.out)
			if err := sh.in.Err(); err != nil {
				return err
			}
			if err := sh.leave(); !errors.Is(err, errQuit) {
				return err
			}
			return nil
		}
		err := sh.exec(sh.in.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			logError("%v", err)
		}
	}
}

func (sh *shell) prompt() string {
	if sh.s.Dirty() {
		return "i18nedit* > "
	}
	return "i18nedit> "
}

func (sh *shell) open(dir string) error {
	s, err := openSession(sh.cmd, dir, session.WithConfirm(promptConfirm(sh.in, sh.out)))
	if err != nil {
		return err
	}
	sh.s = s
	return nil
}

// restore applies the selection and expanded groups remembered from the
// last shell, skipping keys that no longer exist.
func (sh *shell) restore() {
	for _, k := range prefs.LastExpandedKeys {
		if n, ok := sh.s.Find(k); ok && !n.IsLeaf() {
			sh.expanded[n.Key()] = true
		}
	}
	if _, ok := sh.s.Find(prefs.LastSelectedKey); ok {
		sh.selected = prefs.LastSelectedKey
		logInfo(i18n.T("Last selected key: %s"), sh.selected)
	}
}

func (sh *shell) remember() {
	var expanded []string
	for n := range sh.s.Walk() {
		if sh.expanded[n.Key()] {
			expanded = append(expanded, n.Key())
		}
	}
	err := settings.Update(func(st *settings.Settings) {
		st.LastSelectedKey = sh.selected
		st.LastExpandedKeys = expanded
	})
	if err != nil {
		logger.Debug("shell state not saved", "error", err)
	}
}

// leave ends the shell, offering to save unsaved changes. Answering
// "cancel" returns to the prompt.
func (sh *shell) leave() error {
	sh.remember()
	for sh.s.Dirty() {
		fmt.Fprint(sh.out, i18n.T("Save changes before leaving? [y/n/c] "))
		if !sh.in.Scan() {
			fmt.Fprintln(sh.out)
			logWarning(i18n.T("Unsaved changes were discarded"))
			sh.s.Reset()
			break
		}
		switch strings.ToLower(strings.TrimSpace(sh.in.Text())) {
		case "y", "yes":
			if err := saveSession(sh.s); err != nil {
				logError("%v", err)
			}
		case "n", "no":
			sh.s.Reset()
		case "c", "cancel":
			return nil
		}
	}
	if err := sh.s.Close(); err != nil {
		return err
	}
	return errQuit
}

// splitArgs splits line into at most n fields; the last field keeps the
// rest of the line including inner spaces.
func splitArgs(line string, n int) []string {
	var out []string
	rest := strings.TrimSpace(line)
	for rest != "" {
		if len(out) == n-1 {
			out = append(out, rest)
			break
		}
		i := strings.IndexAny(rest, " \t")
		if i < 0 {
			out = append(out, rest)
			break
		}
		out = append(out, rest[:i])
		rest = strings.TrimLeft(rest[i:], " \t")
	}
	return out
}

func (sh *shell) exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	name, args := fields[0], fields[1:]
	ctx := sh.cmd.Context()

	need := func(n int) error {
		if len(args) != n {
			return fmt.Errorf(i18n.T("%s: expected %d arguments, got %d"), name, n, len(args))
		}
		return nil
	}

	switch name {
	case "help", "?":
		fmt.Fprint(sh.out, shellHelp)
	case "quit", "exit", "q":
		return sh.leave()
	case "status":
		printStatus(sh.out, sh.s)
	case "tree":
		return sh.tree(args)
	case "expand", "collapse":
		if err := need(1); err != nil {
			return err
		}
		n, ok := sh.s.Find(args[0])
		if !ok || n.IsLeaf() {
			return fmt.Errorf(i18n.T("%q is not a group"), args[0])
		}
		sh.expanded[n.Key()] = name == "expand"
	case "get":
		if err := need(1); err != nil {
			return err
		}
		if err := printValues(sh.out, sh.s, args[0]); err != nil {
			return err
		}
		sh.selected = args[0]
	case "set":
		parts := splitArgs(line, 4)
		if len(parts) < 3 {
			return fmt.Errorf(i18n.T("%s: expected %d arguments, got %d"), name, 3, len(parts)-1)
		}
		value := ""
		if len(parts) == 4 {
			value = parts[3]
		}
		return setValue(sh.s, parts[1], parts[2], value)
	case "add":
		if err := need(1); err != nil {
			return err
		}
		return addKey(ctx, sh.s, args[0])
	case "remove", "rm":
		if err := need(1); err != nil {
			return err
		}
		return removeKey(ctx, sh.s, args[0])
	case "rename", "mv":
		if err := need(2); err != nil {
			return err
		}
		return transferKey(ctx, sh.s, (*session.Session).RenameKey, args[0], args[1], i18n.T("Renamed %s to %s"))
	case "duplicate", "cp":
		if err := need(2); err != nil {
			return err
		}
		return transferKey(ctx, sh.s, (*session.Session).DuplicateKey, args[0], args[1], i18n.T("Copied %s to %s"))
	case "find":
		if err := need(1); err != nil {
			return err
		}
		return findKey(sh.out, sh.s, args[0])
	case "locale":
		if len(args) < 2 || len(args) > 3 || args[0] != "add" {
			return errors.New(i18n.T("usage: locale add TAG [FORMAT]"))
		}
		format := ""
		if len(args) == 3 {
			format = args[2]
		}
		return addLocale(sh.s, args[1], format)
	case "check":
		return checkSession(sh.out, sh.s)
	case "open":
		if len(args) > 1 {
			return fmt.Errorf(i18n.T("%s: expected %d arguments, got %d"), name, 1, len(args))
		}
		if sh.s.Dirty() {
			return errors.New(i18n.T("unsaved changes: save or reload first"))
		}
		dir := recentDir()
		if len(args) == 1 {
			dir = args[0]
		}
		if err := sh.open(dir); err != nil {
			return err
		}
		clear(sh.expanded)
		sh.selected = ""
	case "reload":
		report, err := sh.s.Reload(ctx)
		if err != nil {
			return err
		}
		printImportReport(report)
		logSuccess(i18n.N("Reloaded %d resource", "Reloaded %d resources", len(report.Loaded)), len(report.Loaded))
	case "save":
		return saveSession(sh.s)
	default:
		return fmt.Errorf(i18n.T("unknown command %q, type \"help\""), name)
	}
	return nil
}

func (sh *shell) tree(args []string) error {
	start := sh.s.Tree().Root()
	if len(args) > 0 {
		n, ok := sh.s.Find(args[0])
		if !ok {
			return fmt.Errorf(i18n.T("key %q not found"), args[0])
		}
		start = n
	}
	printTree(sh.out, sh.s, start, func(n nstree.Node, level int) bool {
		return sh.expanded[n.Key()]
	})
	return nil
}
