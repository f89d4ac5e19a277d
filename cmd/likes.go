package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	likeCmd := &cobra.Command{
		Use:   "like ENTRY_ID",
		Short: "Like or unlike an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if a.likes.Toggle(args[0]) {
				fmt.Fprintf(cmd.OutOrStdout(), "liked %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "unliked %s\n", args[0])
			}
			return nil
		},
	}
	rootCmd.AddCommand(likeCmd)

	var withText bool
	likesCmd := &cobra.Command{
		Use:   "likes",
		Short: "List liked entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := a.loadEntries(ctx, false); err != nil {
				return err
			}

			favs := a.session.Favorites(a.likes.IsLiked)
			out := cmd.OutOrStdout()
			if len(favs) == 0 {
				fmt.Fprintln(out, "no liked entries")
				return nil
			}
			if !withText {
				return printEntries(out, favs, a.likes.IsLiked)
			}

			ids := make([]string, len(favs))
			for i, m := range favs {
				ids[i] = m.ID
			}
			a.session.EnsureContentByIDs(ctx, ids)
			for _, m := range favs {
				text, ok := a.session.Text(m.ID)
				if !ok {
					text = "(failed to load)"
				}
				printEntry(out, m, text, true)
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	likesCmd.Flags().BoolVarP(&withText, "text", "t", false, "print each entry's text")
	rootCmd.AddCommand(likesCmd)
}
