package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/existflow/ideabox/internal/category"
	"github.com/existflow/ideabox/internal/model"
	"github.com/existflow/ideabox/internal/notebook"
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"cat"},
	Short:   "Manage categories",
	Long: `Manage categories and their palette.

Examples:
  ideabox category list --sort name-asc
  ideabox category color Work "#ff8800"
  ideabox category hide Someday
  ideabox category rename Work Job`,
}

var categoryListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List categories with idea counts",
	RunE:    runCategoryList,
}

var categoryColorCmd = &cobra.Command{
	Use:   "color [name] [#rrggbb]",
	Short: "Set or clear (no colour argument) a category colour",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		color := ""
		if len(args) == 2 {
			color = args[1]
		}
		return withPalette(func(ctx context.Context, a *app, p *notebook.Palette) error {
			if err := p.SetCategoryColor(ctx, args[0], color); err != nil {
				return err
			}
			if color == "" {
				fmt.Printf("✓ Cleared colour of %q\n", strings.TrimSpace(args[0]))
			} else {
				fmt.Printf("✓ %q is now %s\n", strings.TrimSpace(args[0]), strings.ToLower(color))
			}
			return nil
		})
	},
}

var categoryHideCmd = &cobra.Command{
	Use:   "hide [name]",
	Short: "Hide a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setVisibility(args[0], false)
	},
}

var categoryShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a hidden category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setVisibility(args[0], true)
	},
}

var categoryRenameCmd = &cobra.Command{
	Use:   "rename [old] [new]",
	Short: "Rename a category across all ideas",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPalette(func(ctx context.Context, a *app, p *notebook.Palette) error {
			result, err := p.RenameCategory(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("✓ Renamed %q to %q in %d idea(s)\n", strings.TrimSpace(args[0]), strings.TrimSpace(args[1]), result.UpdatedIdeas)
			if !result.PaletteMigrated {
				fmt.Println("  palette kept on this device only")
			}
			return nil
		})
	},
}

var categoryRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List categories, most recently used first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		names, err := a.repo.GetCategories(context.Background())
		if err != nil {
			return err
		}
		for _, name := range a.usage.ByRecentUsage(names) {
			fmt.Printf("  %s\n", name)
		}
		return nil
	},
}

var categorySort string

func init() {
	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryColorCmd)
	categoryCmd.AddCommand(categoryHideCmd)
	categoryCmd.AddCommand(categoryShowCmd)
	categoryCmd.AddCommand(categoryRenameCmd)
	categoryCmd.AddCommand(categoryRecentCmd)

	categoryListCmd.Flags().StringVarP(&categorySort, "sort", "s", "", "Sort: count-desc, count-asc, name-asc, name-desc (remembered)")
	categoryListCmd.Flags().BoolP("refresh", "r", false, "Fetch the palette from the server")
}

func withPalette(fn func(ctx context.Context, a *app, p *notebook.Palette) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(context.Background(), a, a.repo.Palette())
}

func setVisibility(name string, visible bool) error {
	return withPalette(func(ctx context.Context, a *app, p *notebook.Palette) error {
		if err := p.SetCategoryVisibility(ctx, name, visible); err != nil {
			return err
		}
		state := "hidden"
		if visible {
			state = "visible"
		}
		fmt.Printf("✓ %q is %s\n", strings.TrimSpace(name), state)
		return nil
	})
}

func runCategoryList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	key := a.mirror.ReadSortPreference()
	if cmd.Flags().Changed("sort") {
		key, err = category.ParseSortKey(categorySort)
		if err != nil {
			return err
		}
		a.mirror.WriteSortPreference(key)
	}
	refresh, _ := cmd.Flags().GetBool("refresh")

	ctx := context.Background()
	ideas, err := a.repo.GetIdeas(ctx, notebook.GetOptions{Force: refresh})
	if err != nil {
		return err
	}
	palette := a.repo.Palette().GetCategoryPalette(ctx, notebook.GetOptions{Force: refresh})

	summary := category.Summarize(ideas, key)
	if len(summary.Categories) == 0 {
		fmt.Println("No categories yet. File an idea with: ideabox add \"text\" -c Work")
		return nil
	}

	fmt.Printf("\n🏷  Categories (%d ideas, %d uncategorized, sorted %s)\n", summary.Total, summary.Uncategorized, key)
	fmt.Println(strings.Repeat("─", 60))
	for _, c := range summary.Categories {
		fmt.Println(formatCategory(c, palette))
	}
	if state := a.repo.Palette().Sync(); state == notebook.SyncDisabled {
		fmt.Println("\n  palette sync is disabled by the server; colours stay on this device")
	}
	fmt.Println()
	return nil
}

func formatCategory(c category.Count, palette model.Palette) string {
	d := category.Appearance(c.Name, palette)
	swatch := lipgloss.NewStyle().
		Background(lipgloss.Color(d.Color)).
		Foreground(lipgloss.Color(d.TextColor)).
		Padding(0, 1).
		Render(c.Name)

	flags := ""
	if d.Custom {
		flags += " " + d.Color
	}
	if !d.Visible {
		flags += " (hidden)"
	}
	return fmt.Sprintf("  %4d  %s%s", c.Count, swatch, flags)
}
