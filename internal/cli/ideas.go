package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/existflow/ideabox/internal/category"
	"github.com/existflow/ideabox/internal/model"
	"github.com/existflow/ideabox/internal/notebook"
)

var addCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Capture a new idea",
	Long: `Capture a new idea, optionally filed under categories.

Examples:
  ideabox add "Try sourdough"
  ideabox add "Quarterly review deck" -c Work
  ideabox add "Paint the fence" -c Home,Weekend --pin`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addCategories []string
	addPin        bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List ideas",
	Long: `List ideas in one of the views: active, pinned, hidden, archived.

Examples:
  ideabox list
  ideabox list --view archived
  ideabox list -c Work --refresh`,
	RunE: runList,
}

var (
	listView     string
	listCategory string
	listRefresh  bool
)

var pinCmd = &cobra.Command{
	Use:   "pin [id]",
	Short: "Pin an idea, unpinning any other",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIdea(args[0], func(ctx context.Context, a *app, idea model.Idea) error {
			if err := a.repo.SetIdeaPinned(ctx, idea.ID, true); err != nil {
				return err
			}
			fmt.Printf("★ Pinned %s\n", shortID(idea.ID))
			return nil
		})
	},
}

var unpinCmd = &cobra.Command{
	Use:   "unpin [id]",
	Short: "Unpin an idea",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIdea(args[0], func(ctx context.Context, a *app, idea model.Idea) error {
			if err := a.repo.SetIdeaPinned(ctx, idea.ID, false); err != nil {
				return err
			}
			fmt.Printf("✓ Unpinned %s\n", shortID(idea.ID))
			return nil
		})
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive [id]",
	Short: "Archive an idea (--undo to restore)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		undo, _ := cmd.Flags().GetBool("undo")
		return withIdea(args[0], func(ctx context.Context, a *app, idea model.Idea) error {
			if err := a.repo.SetIdeaArchived(ctx, idea.ID, !undo); err != nil {
				return err
			}
			if undo {
				fmt.Printf("✓ Restored %s\n", shortID(idea.ID))
			} else {
				fmt.Printf("✓ Archived %s\n", shortID(idea.ID))
			}
			return nil
		})
	},
}

var hideCmd = &cobra.Command{
	Use:   "hide [id]",
	Short: "Hide an idea (--undo to show it again)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		undo, _ := cmd.Flags().GetBool("undo")
		return withIdea(args[0], func(ctx context.Context, a *app, idea model.Idea) error {
			if err := a.repo.SetIdeaHidden(ctx, idea.ID, !undo); err != nil {
				return err
			}
			if undo {
				fmt.Printf("✓ Unhid %s\n", shortID(idea.ID))
			} else {
				fmt.Printf("✓ Hid %s\n", shortID(idea.ID))
			}
			return nil
		})
	},
}

var tagCmd = &cobra.Command{
	Use:   "tag [id] [categories...]",
	Short: "Replace the categories of an idea",
	Long: `Replace the categories of an idea. Pass no categories to clear them.

Examples:
  ideabox tag 3fa2 Work Someday
  ideabox tag 3fa2 "Work, Someday"
  ideabox tag 3fa2`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		categories := splitCategories(args[1:])
		return withIdea(args[0], func(ctx context.Context, a *app, idea model.Idea) error {
			if err := a.repo.SetIdeaCategories(ctx, idea.ID, categories); err != nil {
				return err
			}
			for _, c := range categories {
				a.usage.Track(c)
			}
			fmt.Printf("✓ %s filed under [%s]\n", shortID(idea.ID), strings.Join(categories, ", "))
			return nil
		})
	},
}

var editCmd = &cobra.Command{
	Use:   "edit [id] [text]",
	Short: "Replace the text of an idea",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args[1:], " ")
		return withIdea(args[0], func(ctx context.Context, a *app, idea model.Idea) error {
			if err := a.repo.UpdateIdeaText(ctx, idea.ID, text); err != nil {
				return err
			}
			fmt.Printf("✓ Updated %s\n", shortID(idea.ID))
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete [id]",
	Aliases: []string{"rm"},
	Short:   "Delete an idea",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIdea(args[0], func(ctx context.Context, a *app, idea model.Idea) error {
			cancel := a.repo.OnCategoryDeleted(func(e model.CategoryDeleted) {
				fmt.Printf("  category %q is no longer used\n", e.Category)
			})
			defer cancel()

			if err := a.repo.DeleteIdea(ctx, idea.ID); err != nil {
				return err
			}
			fmt.Printf("✓ Deleted %s\n", shortID(idea.ID))
			return nil
		})
	},
}

func init() {
	addCmd.Flags().StringSliceVarP(&addCategories, "category", "c", nil, "Categories (repeat or comma-separate)")
	addCmd.Flags().BoolVar(&addPin, "pin", false, "Pin the new idea")

	listCmd.Flags().StringVarP(&listView, "view", "v", "active", "View: active, pinned, hidden, archived")
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Only ideas filed under this category")
	listCmd.Flags().BoolVarP(&listRefresh, "refresh", "r", false, "Fetch from the server before listing")

	archiveCmd.Flags().Bool("undo", false, "Restore from the archive")
	hideCmd.Flags().Bool("undo", false, "Show the idea again")
}

// withIdea opens the app and resolves an id prefix for a single-idea command
func withIdea(prefix string, fn func(ctx context.Context, a *app, idea model.Idea) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	idea, err := a.findIdea(ctx, prefix)
	if err != nil {
		return err
	}
	return fn(ctx, a, idea)
}

func runAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	idea := model.NewIdea(uuid.New().String(), strings.TrimSpace(strings.Join(args, " ")), splitCategories(addCategories))
	if err := a.repo.SaveIdea(ctx, idea); err != nil {
		return fmt.Errorf("failed to save idea: %w", err)
	}
	for _, c := range idea.Categories {
		a.usage.Track(c)
	}

	if addPin {
		if err := a.repo.SetIdeaPinned(ctx, idea.ID, true); err != nil {
			return fmt.Errorf("saved, but failed to pin: %w", err)
		}
	}

	label := "Inbox"
	if len(idea.Categories) > 0 {
		label = strings.Join(idea.Categories, ", ")
	}
	fmt.Printf("✓ Added to [%s]: %q (%s)\n", label, idea.Text, shortID(idea.ID))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	view, err := model.ParseView(listView)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	if listRefresh {
		if _, err := a.repo.GetIdeas(ctx, notebook.GetOptions{Force: true}); err != nil {
			return err
		}
	}

	ideas, err := a.repo.View(ctx, view)
	if err != nil {
		return fmt.Errorf("failed to list ideas: %w", err)
	}

	if listCategory != "" {
		filtered := ideas[:0:0]
		for _, idea := range ideas {
			if category.Contains(idea.Categories, listCategory) {
				filtered = append(filtered, idea)
			}
		}
		ideas = filtered
	}

	if len(ideas) == 0 {
		fmt.Printf("No %s ideas. Add one with: ideabox add \"Your idea\"\n", view)
		return nil
	}

	fmt.Printf("\n💡 %s (%d)\n", view, len(ideas))
	fmt.Println(strings.Repeat("─", 72))
	for _, idea := range ideas {
		printIdea(idea)
	}
	fmt.Println()
	return nil
}

func printIdea(idea model.Idea) {
	icon := "  "
	switch {
	case idea.Pinned:
		icon = "★ "
	case idea.Archived:
		icon = "▪ "
	case idea.Hidden:
		icon = "· "
	}

	text := idea.Text
	if r := []rune(text); len(r) > 40 {
		text = string(r[:37]) + "..."
	}

	created := ""
	if idea.CreatedAt > 0 {
		created = time.UnixMilli(idea.CreatedAt).Format("Jan 2")
	}

	cats := ""
	if len(idea.Categories) > 0 {
		cats = "[" + strings.Join(idea.Categories, ", ") + "]"
	}

	fmt.Printf("  %s %-8s  %-40s  %-6s  %s\n", icon, shortID(idea.ID), text, created, cats)
}
