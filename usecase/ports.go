package usecase

import (
	"context"

	"github.com/Aurelien-D/ToDoList-IA/domain"
)

// Notifier delivers user-visible notices to the presentation layer.
type Notifier interface {
	Notify(n domain.Notice)
}

// SuggestionGateway is the AI backend boundary the board enriches tasks
// through. Both calls are best-effort: a failing gateway never fails the
// operation that asked for a suggestion.
type SuggestionGateway interface {
	IsConfigured() bool
	Categorize(ctx context.Context, title string) (string, error)
	GenerateSubtasks(ctx context.Context, title string) ([]string, error)
	ClearCache()
}
