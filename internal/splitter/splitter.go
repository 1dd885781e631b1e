// Package splitter cuts document text into fixed-size overlapping windows.
package splitter

import (
	"strings"
	"unicode"
)

// Config configures a Splitter. Sizes are measured in runes.
type Config struct {
	// ChunkSize is the maximum runes per window
	ChunkSize int

	// Overlap is the rune overlap between consecutive windows
	Overlap int

	// PreserveSentences tries to break at sentence boundaries
	PreserveSentences bool

	// PreserveParagraphs tries to break at paragraph and line boundaries
	PreserveParagraphs bool
}

// DefaultConfig returns the child window configuration.
func DefaultConfig() Config {
	return Config{
		ChunkSize:          400,
		Overlap:            100,
		PreserveSentences:  true,
		PreserveParagraphs: true,
	}
}

// Window is one split of the input text.
// Start and End are rune offsets of the untrimmed window.
type Window struct {
	Content string
	Start   int
	End     int
}

// Splitter splits text into overlapping windows.
type Splitter struct {
	config Config
}

// New creates a splitter. Invalid sizes are clamped so splitting always advances.
func New(config Config) *Splitter {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultConfig().ChunkSize
	}
	if config.Overlap < 0 {
		config.Overlap = 0
	}
	if config.Overlap >= config.ChunkSize {
		config.Overlap = config.ChunkSize / 2
	}
	return &Splitter{config: config}
}

// Config returns the effective configuration.
func (s *Splitter) Config() Config {
	return s.config
}

// Split returns the windows of text in order.
// Whitespace-only text yields no windows; text that fits in one window yields exactly one.
func (s *Splitter) Split(text string) []Window {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= s.config.ChunkSize {
		return []Window{{Content: strings.TrimSpace(text), Start: 0, End: len(runes)}}
	}

	var windows []Window
	start := 0

	for start < len(runes) {
		end := start + s.config.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}

		if end < len(runes) {
			if bp := s.findBreakPoint(runes, start, end); bp > start {
				end = bp
			}
		}

		if content := strings.TrimSpace(string(runes[start:end])); content != "" {
			windows = append(windows, Window{Content: content, Start: start, End: end})
		}

		if end >= len(runes) {
			break
		}

		// Move start with overlap, ensuring we always advance
		next := end - s.config.Overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return windows
}

var (
	paragraphBreak = []rune("\n\n")
	lineBreak      = []rune("\n")
	sentenceEnders = [][]rune{[]rune(". "), []rune("! "), []rune("? "), []rune(".\n"), []rune("!\n"), []rune("?\n")}
)

// findBreakPoint looks for a natural boundary in the last half of the window.
// Returns the rune offset just past the boundary, or maxEnd when none is found.
func (s *Splitter) findBreakPoint(runes []rune, start, maxEnd int) int {
	searchStart := maxEnd - (maxEnd-start)/2

	if s.config.PreserveParagraphs {
		if idx := lastIndex(runes, searchStart, maxEnd, paragraphBreak); idx != -1 {
			return idx + len(paragraphBreak)
		}
		if idx := lastIndex(runes, searchStart, maxEnd, lineBreak); idx != -1 {
			return idx + len(lineBreak)
		}
	}

	if s.config.PreserveSentences {
		best := -1
		for _, ender := range sentenceEnders {
			if idx := lastIndex(runes, searchStart, maxEnd, ender); idx != -1 && idx+len(ender) > best {
				best = idx + len(ender)
			}
		}
		if best > 0 {
			return best
		}
	}

	// Word boundary
	for i := maxEnd - 1; i >= searchStart; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}

	return maxEnd
}

// lastIndex returns the offset of the last occurrence of pat fully inside runes[from:to], or -1.
func lastIndex(runes []rune, from, to int, pat []rune) int {
	for i := to - len(pat); i >= from; i-- {
		match := true
		for j, r := range pat {
			if runes[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
