package resonance

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// signature composes the meaning signature from three independent
// classifiers: the set of matched theme groups, the first matching
// mood group, and an archetype picked by text length. Each classifier
// is deterministic, so the composed sentence is too.
func signature(text string, words []string) string {
	present := make(map[string]struct{}, len(words))
	for _, w := range words {
		present[w] = struct{}{}
	}

	var themes []string
	for _, g := range themeGroups {
		if anyPresent(present, g.words) {
			themes = append(themes, g.label)
		}
	}
	if len(themes) == 0 {
		themes = []string{fallbackTheme}
	}

	mood := defaultMood
	for _, g := range moodGroups {
		if anyPresent(present, g.words) {
			mood = g.label
			break
		}
	}

	archetype := archetypes[utf8.RuneCountInString(text)%len(archetypes)]

	return fmt.Sprintf("%s resonance with %s undertones, exploring themes of %s",
		archetype, mood, strings.Join(themes, ", "))
}

func anyPresent(present, group map[string]struct{}) bool {
	for w := range group {
		if _, ok := present[w]; ok {
			return true
		}
	}
	return false
}
