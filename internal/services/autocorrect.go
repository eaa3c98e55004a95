package services

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"
)

//go:embed words.txt
var defaultWords []byte

// Correction is the outcome of a correction lookup: either the word was
// left alone, or it was replaced by a suggestion.
type Correction struct {
	Original  string
	corrected string
	changed   bool
}

// Unchanged returns a correction that keeps word as is.
func Unchanged(word string) Correction {
	return Correction{Original: word, corrected: word}
}

// ChangedTo returns a correction replacing original with corrected. It
// degrades to Unchanged when both are equal.
func ChangedTo(original, corrected string) Correction {
	if original == corrected {
		return Unchanged(original)
	}
	return Correction{Original: original, corrected: corrected, changed: true}
}

// Changed reports whether the word was replaced.
func (c Correction) Changed() bool { return c.changed }

// Word returns the word to put back into the text.
func (c Correction) Word() string { return c.corrected }

// Corrector suggests a spelling correction for a single word.
type Corrector interface {
	Correct(ctx context.Context, word string) (Correction, error)
}

// DictionaryCorrector picks the closest dictionary word by edit distance.
type DictionaryCorrector struct {
	log         *zap.Logger
	words       []string
	known       map[string]struct{}
	maxDistance int
}

// NewDictionaryCorrector loads the word list at path, or the embedded list
// when path is empty.
func NewDictionaryCorrector(log *zap.Logger, path string, maxDistance int) (*DictionaryCorrector, error) {
	var r io.Reader = bytes.NewReader(defaultWords)
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open dictionary: %w", err)
		}
		defer f.Close()
		r = f
	}

	words, err := readWords(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}
	if maxDistance < 1 {
		maxDistance = 1
	}

	known := make(map[string]struct{}, len(words))
	for _, w := range words {
		known[w] = struct{}{}
	}

	log.Info("Autocorrect dictionary loaded", zap.Int("words", len(words)), zap.String("source", dictionarySource(path)))
	return &DictionaryCorrector{log: log, words: words, known: known, maxDistance: maxDistance}, nil
}

// Correct never fails on unknown words; they come back unchanged.
func (d *DictionaryCorrector) Correct(ctx context.Context, word string) (Correction, error) {
	if err := ctx.Err(); err != nil {
		return Correction{}, err
	}
	if strings.TrimSpace(word) == "" || !isWord(word) {
		return Unchanged(word), nil
	}

	lower := strings.ToLower(word)
	if _, ok := d.known[lower]; ok {
		return Unchanged(word), nil
	}

	best, bestDist := "", d.maxDistance+1
	for _, candidate := range d.words {
		if abs(len(candidate)-len(lower)) > d.maxDistance {
			continue
		}
		dist := levenshtein.ComputeDistance(lower, candidate)
		if dist < bestDist {
			best, bestDist = candidate, dist
		}
	}
	if best == "" {
		d.log.Debug("No correction found", zap.String("word", word))
		return Unchanged(word), nil
	}

	return ChangedTo(word, matchCase(word, best)), nil
}

func readWords(r io.Reader) ([]string, error) {
	seen := make(map[string]struct{})
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		words = append(words, line)
	}
	return words, scanner.Err()
}

// isWord accepts letters and apostrophes only.
func isWord(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && r != '\'' {
			return false
		}
	}
	return true
}

// matchCase applies the casing pattern of original (lower, Title or UPPER)
// to suggestion.
func matchCase(original, suggestion string) string {
	runes := []rune(original)
	switch {
	case len(runes) > 1 && strings.ToUpper(original) == original:
		return strings.ToUpper(suggestion)
	case unicode.IsUpper(runes[0]):
		s := []rune(suggestion)
		s[0] = unicode.ToUpper(s[0])
		return string(s)
	}
	return suggestion
}

func dictionarySource(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
