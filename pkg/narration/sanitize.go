package narration

import (
	"regexp"
	"strings"
)

// Model output sometimes carries meta text that should never reach the
// player: markdown fences, stage directions, a "Narrator:" prefix, or
// bracketed mechanics the model invented. Mechanics shown to the player
// always come from the resolved traces, so bracketed numbers in prose are
// noise.
var (
	codeFenceRegex     = regexp.MustCompile("(?s)```.*?```")
	markdownHeadRegex  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	stageDirectiveList = []string{
		"(rolls dice)", "(rolling)", "(dice roll)", "(pauses)", "(thinking)",
	}
	narratorPrefixRegex = regexp.MustCompile(`(?i)^\s*(narrator|dm|dungeon master)\s*:\s*`)
	bracketNoteRegex    = regexp.MustCompile(`\[[^\]]*\]`)
	multiSpaceRegex     = regexp.MustCompile(`[ \t]{2,}`)
	multiNewlineRegex   = regexp.MustCompile(`\n{3,}`)
)

// Sanitize strips meta artifacts from model prose. The returned text is
// plain narration suitable for display. An all-noise input sanitizes to the
// empty string; callers treat that like a narration failure.
func Sanitize(prose string) string {
	out := codeFenceRegex.ReplaceAllString(prose, "")
	out = markdownHeadRegex.ReplaceAllString(out, "")
	out = narratorPrefixRegex.ReplaceAllString(out, "")
	out = bracketNoteRegex.ReplaceAllString(out, "")

	lower := strings.ToLower(out)
	for _, directive := range stageDirectiveList {
		for {
			idx := strings.Index(lower, directive)
			if idx < 0 {
				break
			}
			out = out[:idx] + out[idx+len(directive):]
			lower = lower[:idx] + lower[idx+len(directive):]
		}
	}

	out = multiSpaceRegex.ReplaceAllString(out, " ")
	out = multiNewlineRegex.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
