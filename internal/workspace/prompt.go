package workspace

import "context"

// Prompter supplies values for rename, color, and icon commands that
// arrive without one. Implementations run off-loop and may block on a
// user; results come back through the controller's command queue.
type Prompter interface {
	// PromptText asks for a free-form string, seeded with initial.
	PromptText(ctx context.Context, prompt, initial string) (string, bool)
	// PickColor asks the user to choose one of the theme's color keys.
	PickColor(ctx context.Context, keys []string) (string, bool)
	// PickIcon asks for an icon name.
	PickIcon(ctx context.Context) (string, bool)
}

// NoPrompter declines every prompt. Commands that need a value and get
// none are dropped.
type NoPrompter struct{}

func (NoPrompter) PromptText(context.Context, string, string) (string, bool) {
	return "", false
}

func (NoPrompter) PickColor(context.Context, []string) (string, bool) {
	return "", false
}

func (NoPrompter) PickIcon(context.Context) (string, bool) {
	return "", false
}
