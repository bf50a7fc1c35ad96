package lexicon

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"strings"
)

//go:embed words.txt
var embeddedWords string

// WordList is a Dictionary backed by a newline-delimited wordlist. Lookups
// are case-insensitive. Immutable after construction.
type WordList struct {
	words map[string]struct{}
}

// NewFromFile loads a wordlist file, one word per line. Blank lines and
// lines starting with '#' are ignored.
func NewFromFile(path string) (*WordList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading wordlist: %w", err)
	}
	wl := newFromText(string(data))
	log.Printf("lexicon.WordList: loaded %d words from %s", len(wl.words), path)
	return wl, nil
}

// NewEmbedded builds a WordList from the compact embedded list. It is a
// degraded fallback for deployments without a full dictionary file.
func NewEmbedded() *WordList {
	return newFromText(embeddedWords)
}

func newFromText(text string) *WordList {
	words := make(map[string]struct{})
	for _, line := range strings.Split(text, "\n") {
		w := strings.TrimSpace(line)
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		words[strings.ToLower(w)] = struct{}{}
	}
	return &WordList{words: words}
}

// IsKnownWord reports whether token is in the wordlist.
func (w *WordList) IsKnownWord(token string) bool {
	_, ok := w.words[strings.ToLower(token)]
	return ok
}

// Len reports the number of distinct words loaded.
func (w *WordList) Len() int {
	return len(w.words)
}
