package rag

import (
	"strings"
	"unicode/utf8"
)

// DefaultSeparators are tried in order: paragraphs, lines, words, characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter cuts text into overlapping chunks of at most Size characters,
// preferring to break on the coarsest separator that appears in the text.
type Splitter struct {
	Size       int
	Overlap    int
	Separators []string
}

func NewSplitter(size, overlap int) *Splitter {
	return &Splitter{Size: size, Overlap: overlap, Separators: DefaultSeparators}
}

func (s *Splitter) Split(text string) []string {
	seps := s.Separators
	if len(seps) == 0 {
		seps = DefaultSeparators
	}
	return s.split(text, seps)
}

func (s *Splitter) split(text string, seps []string) []string {
	sep := seps[len(seps)-1]
	var rest []string
	for i, candidate := range seps {
		if candidate == "" {
			sep = ""
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = seps[i+1:]
			break
		}
	}

	var out, good []string
	for _, piece := range splitKeepSeparator(text, sep) {
		if runeLen(piece) < s.Size {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			out = append(out, s.merge(good)...)
			good = nil
		}
		if len(rest) == 0 {
			out = append(out, piece)
		} else {
			out = append(out, s.split(piece, rest)...)
		}
	}
	if len(good) > 0 {
		out = append(out, s.merge(good)...)
	}
	return out
}

// merge packs small pieces into chunks, carrying up to Overlap characters
// of the previous chunk into the next one.
func (s *Splitter) merge(pieces []string) []string {
	var docs, current []string
	total := 0
	for _, p := range pieces {
		n := runeLen(p)
		if total+n > s.Size && len(current) > 0 {
			if doc := joinTrim(current); doc != "" {
				docs = append(docs, doc)
			}
			for total > s.Overlap || (total+n > s.Size && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, p)
		total += n
	}
	if doc := joinTrim(current); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

// splitKeepSeparator splits on sep and glues each separator to the front of
// the piece that follows it. Empty pieces are dropped.
func splitKeepSeparator(text, sep string) []string {
	var parts []string
	if sep == "" {
		for _, r := range text {
			parts = append(parts, string(r))
		}
		return parts
	}
	raw := strings.Split(text, sep)
	for i, p := range raw {
		if i > 0 {
			p = sep + p
		}
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func joinTrim(parts []string) string {
	return strings.TrimSpace(strings.Join(parts, ""))
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
