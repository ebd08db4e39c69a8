package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mhartung/ablage/internal/cli"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage document categories",
		Long:  `List the learned categories and their document-type tokens, or add new ones.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	var sourceDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Long:  `Display all categories with the document-type tokens learned for them.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openKnowledge(sourceDir)
			if err != nil {
				return err
			}

			categories := store.Categories()
			if len(categories) == 0 {
				fmt.Println(cli.InfoStyle.Render("No categories found."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("Category"),
				cli.TableHeaderStyle.Render("Since"),
				cli.TableHeaderStyle.Render("Known document types"))
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				strings.Repeat("-", 16),
				strings.Repeat("-", 10),
				strings.Repeat("-", 50))

			for _, cat := range categories {
				tokens := strings.Join(cat.DocumentTypes, ", ")
				if tokens == "" {
					tokens = cli.SubtleStyle.Render("(none yet)")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", cat.Name, cat.CreatedAt.Format("2006-01-02"), tokens)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&sourceDir, "dir", ".", "source directory whose knowledge file to use")
	return cmd
}

func addCategoryCmd() *cobra.Command {
	var sourceDir string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Long:  `Create a new empty category. Document types are learned when files are sorted into it.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			store, err := openKnowledge(sourceDir)
			if err != nil {
				return err
			}

			if _, exists := store.Get(name); exists {
				return fmt.Errorf("category %q already exists", name)
			}

			if err := store.AddCategory(name); err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created category %q", name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceDir, "dir", ".", "source directory whose knowledge file to use")
	return cmd
}
