package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hadar/agent-session-manager/internal/config"
	"github.com/hadar/agent-session-manager/internal/export"
	"github.com/hadar/agent-session-manager/internal/session"
)

func statsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show session and trash counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(flags)
			if err != nil {
				return err
			}
			return writeStats(cmd.OutOrStdout(), store)
		},
	}
}

func writeStats(w io.Writer, store *session.Store) error {
	active, err := store.ScanActive()
	if err != nil {
		return err
	}
	activeFiles, err := store.CountEntries(store.Roots().Active)
	if err != nil {
		return err
	}
	trashFiles, err := store.CountEntries(store.Roots().Trash)
	if err != nil {
		return err
	}

	var messages, empty int
	projects := make(map[string]bool)
	for _, s := range active {
		messages += s.MessageCount()
		if s.MessageCount() == 0 {
			empty++
		}
		projects[s.ProjectSlug] = true
	}

	roots := store.Roots()
	fmt.Fprintln(w, color.CyanString("Sessions"))
	fmt.Fprintln(w, strings.Repeat("─", 40))
	fmt.Fprintf(w, "  Root:      %s\n", roots.Active)
	fmt.Fprintf(w, "  Files:     %d\n", activeFiles)
	fmt.Fprintf(w, "  Sessions:  %s\n", color.GreenString("%d", len(active)))
	fmt.Fprintf(w, "  Projects:  %d\n", len(projects))
	fmt.Fprintf(w, "  Messages:  %d\n", messages)
	if empty > 0 {
		fmt.Fprintf(w, "  Empty:     %s\n", color.YellowString("%d", empty))
	} else {
		fmt.Fprintf(w, "  Empty:     %d\n", empty)
	}
	fmt.Fprintf(w, "  Trash:     %d (%s)\n", trashFiles, roots.Trash)
	return nil
}

func exportCmd(flags *globalFlags) *cobra.Command {
	var (
		outDir    string
		fromTrash bool
	)

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export a session to Markdown",
		Long: `Export a session transcript with YAML front matter.

The session is matched by full ID or unique ID prefix. Files are written to
the configured export path unless --out is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(flags)
			if err != nil {
				return err
			}

			scan := store.ScanActive
			if fromTrash {
				scan = store.ScanTrash
			}
			sessions, err := scan()
			if err != nil {
				return err
			}
			sess, err := findSession(sessions, args[0])
			if err != nil {
				return err
			}

			dir := outDir
			if dir == "" {
				cfg, _, err := loadConfig(flags)
				if err != nil {
					return err
				}
				if dir, err = cfg.ResolvedExportPath(); err != nil {
					return err
				}
			} else if dir, err = config.ExpandPath(dir); err != nil {
				return err
			}

			path, err := export.WriteFile(sess, dir, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("✓"), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory")
	cmd.Flags().BoolVar(&fromTrash, "trash", false, "look the session up in the trash")
	return cmd
}

// findSession matches a full ID or a unique ID prefix
func findSession(sessions []*session.Session, id string) (*session.Session, error) {
	var matches []*session.Session
	for _, s := range sessions {
		if s.ID == id {
			return s, nil
		}
		if strings.HasPrefix(s.ID, id) {
			matches = append(matches, s)
		}
	}

	switch len(matches) {
	case 0:
		return nil, &session.NotFoundError{ID: id}
	case 1:
		return matches[0], nil
	default:
		return nil, &session.ValidationError{Field: "session id", Reason: fmt.Sprintf("prefix %q matches %d sessions", id, len(matches))}
	}
}
