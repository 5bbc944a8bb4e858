package narration

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain prose untouched",
			input:    "The goblin staggers back, clutching its side.",
			expected: "The goblin staggers back, clutching its side.",
		},
		{
			name:     "narrator prefix stripped",
			input:    "Narrator: Your blade finds its mark.",
			expected: "Your blade finds its mark.",
		},
		{
			name:     "dm prefix stripped case-insensitively",
			input:    "DM: The wolf circles warily.",
			expected: "The wolf circles warily.",
		},
		{
			name:     "bracketed mechanics removed",
			input:    "The blow lands hard [8 damage] and the goblin falls.",
			expected: "The blow lands hard and the goblin falls.",
		},
		{
			name:     "code fence removed",
			input:    "The fight ends.\n```json\n{\"hp\": 0}\n```\nSilence falls.",
			expected: "The fight ends.\n\nSilence falls.",
		},
		{
			name:     "stage directions removed",
			input:    "(rolls dice) The arrow streaks across the clearing.",
			expected: "The arrow streaks across the clearing.",
		},
		{
			name:     "markdown heading stripped",
			input:    "## Round 2\nThe goblins regroup.",
			expected: "Round 2\nThe goblins regroup.",
		},
		{
			name:     "all noise sanitizes to empty",
			input:    "```\nraw\n```",
			expected: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sanitize(tc.input); got != tc.expected {
				t.Errorf("Sanitize(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}
