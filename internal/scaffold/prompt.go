package scaffold

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// Prompter asks the author for the answers of a new post. Fields already
// set in preset are not asked again.
type Prompter interface {
	Ask(ctx context.Context, reg *Registry, preset Answers) (Answers, error)
}

// HuhPrompter asks interactively in the terminal.
type HuhPrompter struct{}

// Ask implements Prompter.
func (HuhPrompter) Ask(ctx context.Context, reg *Registry, preset Answers) (Answers, error) {
	a := preset
	var fields []huh.Field

	if a.Title == "" {
		fields = append(fields, huh.NewInput().
			Title("Post title? (required)").
			Value(&a.Title).
			Validate(func(s string) error {
				if len([]rune(s)) <= 3 {
					return errors.New("title must be longer than 3 characters")
				}
				return nil
			}))
	}
	if a.Category == "" {
		fields = append(fields, huh.NewSelect[string]().
			Title("Category? (required)").
			Options(huh.NewOptions(reg.Categories...)...).
			Height(10).
			Value(&a.Category))
	}
	if a.Author == "" {
		fields = append(fields, huh.NewSelect[string]().
			Title("Author? (required)").
			Options(huh.NewOptions(reg.Authors...)...).
			Height(10).
			Value(&a.Author))
	}
	if len(a.CoAuthors) == 0 {
		fields = append(fields, huh.NewMultiSelect[string]().
			Title("Co-Authors? (select with <space> if any)").
			Options(huh.NewOptions(reg.Authors...)...).
			Height(10).
			Value(&a.CoAuthors))
	}
	if a.Excerpt == "" {
		fields = append(fields, huh.NewInput().
			Title("Excerpt? (you can add it later)").
			Value(&a.Excerpt))
	}

	if len(fields) == 0 {
		return a, nil
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).RunWithContext(ctx); err != nil {
		return Answers{}, fmt.Errorf("scaffold: prompt: %w", err)
	}
	return a, nil
}
