package board

import (
	"testing"

	"github.com/Aurelien-D/ToDoList-IA/domain"
)

func TestSuggestPriority(t *testing.T) {
	t.Parallel()

	cases := []struct {
		title string
		want  domain.Priority
	}{
		{"Urgent: call the bank", domain.PriorityCritical},
		{"reply ASAP", domain.PriorityCritical},
		{"project deadline friday", domain.PriorityCritical},
		{"quick fix for the form", domain.PriorityHigh},
		{"ship this soon", domain.PriorityHigh},
		{"read that book someday", domain.PriorityLow},
		{"clean the garage whenever", domain.PriorityLow},
		{"buy groceries", domain.PriorityNormal},
		{"", domain.PriorityNormal},
		// A critical keyword outranks a lower one in the same title.
		{"urgent but maybe later", domain.PriorityCritical},
		// Matching is case-insensitive substring.
		{"IMPORTANT meeting notes", domain.PriorityCritical},
	}
	for _, tc := range cases {
		t.Run(tc.title, func(t *testing.T) {
			if got := SuggestPriority(tc.title); got != tc.want {
				t.Fatalf("SuggestPriority(%q) = %s, want %s", tc.title, got, tc.want)
			}
		})
	}
}
