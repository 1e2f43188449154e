// Package chunker splits cleaned page text into overlapping token-bounded
// segments sized to fit an LLM context window.
package chunker

import (
	"fmt"
	"unicode/utf8"
)

// charsPerToken is the approximate average characters per token for GPT
// tokenizers. Characters are counted as runes so the estimate and the split
// budget agree on multibyte text.
const charsPerToken = 4

// Chunk is a token-bounded slice of source text prepared for one LLM call.
type Chunk struct {
	// Index is the zero-based position within the chunk sequence.
	Index int

	// Text is the chunk content.
	Text string

	// TokenCount is the estimated token count of Text.
	TokenCount int
}

// Config holds chunking configuration.
type Config struct {
	// MaxTokens is the token budget per chunk.
	MaxTokens int

	// OverlapTokens is how far each chunk reaches back into its predecessor,
	// so no fact at a cut point is lost entirely to truncation.
	OverlapTokens int
}

// DefaultConfig returns chunking defaults sized for a ~16k context model,
// leaving room for the persona prompt and the generated summary.
func DefaultConfig() Config {
	return Config{
		MaxTokens:     3000,
		OverlapTokens: 200,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.MaxTokens <= 0 {
		return fmt.Errorf("MaxTokens must be positive, got %d", c.MaxTokens)
	}
	if c.OverlapTokens < 0 {
		return fmt.Errorf("OverlapTokens must not be negative, got %d", c.OverlapTokens)
	}
	return nil
}

// Chunker splits text into overlapping chunks.
type Chunker struct {
	config Config
}

// New creates a Chunker with the given configuration.
// Overlap at or above the chunk size is clamped to MaxTokens-1 so start
// offsets always advance.
func New(cfg Config) (*Chunker, error) {
	if cfg.MaxTokens == 0 && cfg.OverlapTokens == 0 {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.OverlapTokens >= cfg.MaxTokens {
		cfg.OverlapTokens = cfg.MaxTokens - 1
	}
	return &Chunker{config: cfg}, nil
}

// MustNew creates a Chunker, panicking on invalid config.
// Use for known-good configurations.
func MustNew(cfg Config) *Chunker {
	c, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

// NewDefault creates a Chunker with default configuration.
func NewDefault() *Chunker {
	return MustNew(DefaultConfig())
}

// Split chunks text into an ordered sequence. Text within the token budget
// comes back as a single chunk equal to the input.
func (c *Chunker) Split(text string) []Chunk {
	if text == "" {
		return nil
	}

	if EstimateTokens(text) <= c.config.MaxTokens {
		return []Chunk{{
			Index:      0,
			Text:       text,
			TokenCount: EstimateTokens(text),
		}}
	}

	runes := []rune(text)
	maxChars := c.config.MaxTokens * charsPerToken
	overlapChars := c.config.OverlapTokens * charsPerToken

	var chunks []Chunk
	start := 0

	for start < len(runes) {
		end := start + maxChars
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = cutPoint(runes, start, end)
		}

		content := string(runes[start:end])
		chunks = append(chunks, Chunk{
			Index:      len(chunks),
			Text:       content,
			TokenCount: EstimateTokens(content),
		})

		if end == len(runes) {
			break
		}

		next := end - overlapChars
		next = alignToWordStart(runes, next)
		if next <= start {
			// Forward progress regardless of overlap.
			next = start + 1
		}
		start = next
	}

	return chunks
}

// EstimateTokens estimates token count using the chars/token heuristic.
func EstimateTokens(content string) int {
	if content == "" {
		return 0
	}
	return (utf8.RuneCountInString(content) + charsPerToken - 1) / charsPerToken
}

// lookbackDivisor bounds how far cutPoint searches back for a natural
// boundary, as a fraction of the chunk size.
const lookbackDivisor = 5

// cutPoint finds the best cut position at or before end, preferring a
// paragraph break, then a sentence end, then a word boundary within the
// lookback window. Falls back to the hard limit when nothing better exists.
func cutPoint(runes []rune, start, end int) int {
	window := (end - start) / lookbackDivisor
	floor := end - window
	if floor < start+1 {
		floor = start + 1
	}

	// Paragraph boundary: blank line.
	for i := end; i > floor; i-- {
		if runes[i-1] == '\n' && i >= 2 && runes[i-2] == '\n' {
			return i
		}
	}

	// Sentence boundary: terminal punctuation followed by whitespace. The
	// trailing space joins the chunk only while that stays within end.
	for i := end; i > floor; i-- {
		if isSentenceEnd(runes[i-1]) && i < len(runes) && isSpace(runes[i]) {
			if i < end {
				return i + 1
			}
			return i
		}
	}

	// Word boundary.
	for i := end; i > floor; i-- {
		if isSpace(runes[i-1]) {
			return i
		}
	}

	return end
}

// alignToWordStart nudges pos back to the start of the word it lands in, so
// an overlap region never begins mid-word. Gives up after a short scan.
func alignToWordStart(runes []rune, pos int) int {
	if pos <= 0 {
		return 0
	}
	const maxScan = 24
	for i := pos; i > 0 && pos-i < maxScan; i-- {
		if isSpace(runes[i-1]) {
			return i
		}
	}
	return pos
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '?' || r == '!'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t'
}
