package board

import (
	"strings"

	"github.com/Aurelien-D/ToDoList-IA/domain"
)

// Keyword sets checked in order of decreasing urgency; the first set with a
// match wins.
var (
	criticalKeywords = []string{"urgent", "asap", "critical", "important", "deadline", "immediately", "right away"}
	highKeywords     = []string{"soon", "quick", "fast", "priority", "shortly"}
	lowKeywords      = []string{"later", "someday", "eventually", "maybe", "whenever", "when possible", "if time"}
)

// SuggestPriority derives a priority from title keywords, defaulting to
// Normal when nothing matches.
func SuggestPriority(title string) domain.Priority {
	lower := strings.ToLower(strings.TrimSpace(title))

	if containsAny(lower, criticalKeywords) {
		return domain.PriorityCritical
	}
	if containsAny(lower, highKeywords) {
		return domain.PriorityHigh
	}
	if containsAny(lower, lowKeywords) {
		return domain.PriorityLow
	}
	return domain.PriorityNormal
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
