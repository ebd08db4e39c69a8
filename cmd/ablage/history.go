package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mhartung/ablage/internal/cli"
)

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent file moves",
		Long:  `Display the most recent moves from the audit log, newest first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			history, err := initHistory(ctx)
			if err != nil {
				return err
			}
			defer history.Close()

			records, err := history.ListMoves(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list moves: %w", err)
			}

			if len(records) == 0 {
				fmt.Println(cli.InfoStyle.Render("No moves recorded yet."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("When"),
				cli.TableHeaderStyle.Render("Category"),
				cli.TableHeaderStyle.Render("Year"),
				cli.TableHeaderStyle.Render("Verified"),
				cli.TableHeaderStyle.Render("Target"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 16),
				strings.Repeat("-", 14),
				strings.Repeat("-", 7),
				strings.Repeat("-", 8),
				strings.Repeat("-", 40))

			for _, rec := range records {
				verified := cli.SuccessIcon
				if !rec.Verified {
					verified = cli.SubtleStyle.Render("?")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					rec.MovedAt.Format("2006-01-02 15:04"),
					rec.Category,
					rec.Year,
					verified,
					rec.TargetPath)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of moves to show")
	return cmd
}
