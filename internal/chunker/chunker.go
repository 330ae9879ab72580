// Package chunker splits raw text into bounded, sentence-aligned segments
// sized for embedding-model input. It is a pure function over strings and
// never fails.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultTargetSize is the chunk size used when none is given.
const DefaultTargetSize = 1000

// Split breaks text into chunks of roughly targetSize characters.
// Sentences are never split: a sentence is appended to the current chunk
// unless doing so would push a non-empty chunk past targetSize, in which
// case the chunk is emitted and the sentence starts a new one. A single
// sentence longer than targetSize is kept whole, so chunks may exceed
// targetSize in that case. The final non-empty chunk is always emitted.
func Split(text string, targetSize int) []string {
	if targetSize <= 0 {
		targetSize = DefaultTargetSize
	}

	var chunks []string
	var current strings.Builder

	for _, sentence := range sentences(text) {
		if current.Len() > 0 && current.Len()+len(sentence) > targetSize {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

// sentences splits text on terminal punctuation followed by whitespace.
// Whitespace between sentences is consumed; each sentence keeps its
// terminal punctuation.
func sentences(text string) []string {
	var out []string
	start := 0

	i := 0
	for i < len(text) {
		c := text[i]
		if c == '.' || c == '!' || c == '?' {
			r, size := utf8.DecodeRuneInString(text[i+1:])
			if size > 0 && unicode.IsSpace(r) {
				if s := strings.TrimSpace(text[start : i+1]); s != "" {
					out = append(out, s)
				}
				i += 1 + size
				// consume the rest of the whitespace run
				for i < len(text) {
					r, size := utf8.DecodeRuneInString(text[i:])
					if !unicode.IsSpace(r) {
						break
					}
					i += size
				}
				start = i
				continue
			}
		}
		i++
	}

	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}

	return out
}
