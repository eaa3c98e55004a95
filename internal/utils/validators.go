package utils

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"
)

var (
	// ErrMalformedSelection is the parent of every selection error.
	ErrMalformedSelection = errors.New("malformed selection")

	ErrEmptySelection     = fmt.Errorf("%w: please highlight a single word to autocorrect", ErrMalformedSelection)
	ErrMultiWordSelection = fmt.Errorf("%w: please highlight a single word (no spaces)", ErrMalformedSelection)
	ErrSelectionRange     = fmt.Errorf("%w: selection is outside the text", ErrMalformedSelection)
)

// ValidateSelection checks that the highlighted text is a single word.
func ValidateSelection(selection string) (string, error) {
	if selection == "" {
		return "", ErrEmptySelection
	}
	if strings.IndexFunc(selection, unicode.IsSpace) >= 0 {
		return "", ErrMultiWordSelection
	}
	return selection, nil
}

// Selection is a highlighted range of a text box. Offsets count UTF-16
// code units, as browsers report them.
type Selection struct {
	Text  string
	Start int
	End   int
}

// Selected returns the highlighted substring.
func (s Selection) Selected() (string, error) {
	units := utf16.Encode([]rune(s.Text))
	if s.Start < 0 || s.End < s.Start || s.End > len(units) {
		return "", ErrSelectionRange
	}
	return string(utf16.Decode(units[s.Start:s.End])), nil
}

// Replace swaps the highlighted range for word and returns the new text
// together with the caret position just after word.
func (s Selection) Replace(word string) (string, int, error) {
	units := utf16.Encode([]rune(s.Text))
	if s.Start < 0 || s.End < s.Start || s.End > len(units) {
		return "", 0, ErrSelectionRange
	}
	replacement := utf16.Encode([]rune(word))

	out := make([]uint16, 0, len(units)-(s.End-s.Start)+len(replacement))
	out = append(out, units[:s.Start]...)
	out = append(out, replacement...)
	out = append(out, units[s.End:]...)
	return string(utf16.Decode(out)), s.Start + len(replacement), nil
}
