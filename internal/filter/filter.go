// Package filter provides the profanity sanitizer consumed by the room core
// as a pure Clean(text) -> text function. The core never inspects it beyond
// that boundary.
package filter

import "strings"

var defaultWords = []string{
	"arse", "ass", "bastard", "bitch", "bollocks", "crap",
	"dick", "piss", "prick", "shit", "slut", "twat", "wank",
}

// Filter masks listed words in free text, case-insensitively, preserving
// surrounding punctuation.
type Filter struct {
	words map[string]struct{}
}

// New returns a filter with the default word list.
func New() *Filter {
	f := &Filter{words: make(map[string]struct{}, len(defaultWords))}
	for _, w := range defaultWords {
		f.words[w] = struct{}{}
	}
	return f
}

// RemoveWords drops words from the filter list.
func (f *Filter) RemoveWords(words ...string) {
	for _, w := range words {
		delete(f.words, strings.ToLower(w))
	}
}

// AddWords adds words to the filter list.
func (f *Filter) AddWords(words ...string) {
	for _, w := range words {
		f.words[strings.ToLower(w)] = struct{}{}
	}
}

// Clean replaces each listed word with asterisks of the same length.
func (f *Filter) Clean(text string) string {
	fields := strings.Fields(text)
	changed := false

	for i, field := range fields {
		core := strings.TrimFunc(field, isPunct)
		if core == "" {
			continue
		}
		if _, bad := f.words[strings.ToLower(core)]; !bad {
			continue
		}
		fields[i] = strings.Replace(field, core, strings.Repeat("*", len(core)), 1)
		changed = true
	}

	if !changed {
		return text
	}
	return strings.Join(fields, " ")
}

func isPunct(r rune) bool {
	return strings.ContainsRune(".,!?;:'\"()[]{}<>", r)
}
