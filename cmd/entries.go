package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/takak2166/teum/internal/logger"
	"github.com/takak2166/teum/internal/models"
)

func init() {
	var (
		kind    string
		refresh bool
		asJSON  bool
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.loadEntries(cmd.Context(), refresh); err != nil {
				return err
			}

			list := a.session.All()
			if kind != "" {
				list = a.session.List(models.ParseEntryType(kind))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}
			return printEntries(out, list, a.likes.IsLiked)
		},
	}
	listCmd.Flags().StringVarP(&kind, "kind", "k", "", "quote or journal (default all)")
	listCmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "ignore the metadata cache")
	listCmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	rootCmd.AddCommand(listCmd)

	var showRefresh bool
	showCmd := &cobra.Command{
		Use:   "show ENTRY_ID",
		Short: "Print an entry with its text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := a.loadEntries(ctx, showRefresh); err != nil {
				return err
			}

			m, ok := a.session.Find(args[0])
			if !ok {
				return fmt.Errorf("entry %s not found", args[0])
			}
			a.session.EnsureContentByIDs(ctx, []string{m.ID})
			text, ok := a.session.Text(m.ID)
			if !ok {
				return fmt.Errorf("failed to load text of entry %s", m.ID)
			}
			printEntry(cmd.OutOrStdout(), m, text, a.likes.IsLiked(m.ID))
			return nil
		},
	}
	showCmd.Flags().BoolVarP(&showRefresh, "refresh", "r", false, "ignore the metadata cache")
	rootCmd.AddCommand(showCmd)

	var (
		browseKind    string
		browseSurface string
	)
	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through entries interactively",
		Long: `Browse shows one entry at a time. Commands, one per line:
  n  next entry
  p  previous entry
  l  like or unlike the current entry
  q  quit

The position is remembered per surface.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			refreshed, err := a.openEntries(ctx)
			if err != nil {
				return err
			}
			go func() {
				if err := <-refreshed; err != nil && ctx.Err() == nil {
					logger.Warn("Background refresh failed, browsing cached entries", err)
				}
			}()

			kind := models.ParseEntryType(browseKind)
			surface := browseSurface
			if surface == "" {
				surface = string(kind)
			}
			return browse(cmd.InOrStdin(), cmd.OutOrStdout(), a, a.session.Pager(ctx, kind, surface), kind)
		},
	}
	browseCmd.Flags().StringVarP(&browseKind, "kind", "k", string(models.EntryTypeQuote), "quote or journal")
	browseCmd.Flags().StringVarP(&browseSurface, "surface", "s", "", "cursor name (default the kind)")
	rootCmd.AddCommand(browseCmd)
}

type cursor interface {
	Index() int
	CanShow() bool
	Next()
	Prev()
}

func browse(in io.Reader, out io.Writer, a *app, p cursor, kind models.EntryType) error {
	render := func() {
		list := a.session.List(kind)
		if len(list) == 0 {
			fmt.Fprintln(out, "(no entries)")
			return
		}
		idx := p.Index()
		m := list[idx]
		text, loaded := a.session.Text(m.ID)
		fmt.Fprintf(out, "\n[%d/%d]\n", idx+1, len(list))
		if !p.CanShow() || !loaded {
			fmt.Fprintln(out, "loading...")
			return
		}
		printEntry(out, m, text, a.likes.IsLiked(m.ID))
	}

	render()
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "n", "":
			p.Next()
		case "p":
			p.Prev()
		case "l":
			list := a.session.List(kind)
			if len(list) > 0 {
				a.likes.Toggle(list[p.Index()].ID)
			}
		case "q":
			return nil
		default:
			fmt.Fprintln(out, "commands: n, p, l, q")
			continue
		}
		render()
	}
	return scanner.Err()
}

func printEntries(out io.Writer, list []models.EntryMeta, liked func(string) bool) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tDATE\tAUTHOR\tTITLE\t")
	for _, m := range list {
		title := m.PageTitle
		if liked(m.ID) {
			title = "* " + title
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n", m.ID, m.Type, m.Date, m.Author, title)
	}
	return w.Flush()
}

func printEntry(out io.Writer, m models.EntryMeta, text string, liked bool) {
	header := m.PageTitle
	if liked {
		header += " *"
	}
	fmt.Fprintln(out, header)

	var byline []string
	if m.Author != "" {
		byline = append(byline, m.Author)
	}
	if m.Date != "" {
		byline = append(byline, m.Date)
	}
	if len(byline) > 0 {
		fmt.Fprintln(out, strings.Join(byline, ", "))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, text)
}
