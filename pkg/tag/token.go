package tag

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token describes the in-progress hashtag at the cursor. Start is the byte
// offset of the hash marker; Text is the raw substring between the marker and
// the cursor, not yet normalized.
type Token struct {
	Start int
	Text  string
}

func isMarker(r rune) bool { return r == '#' || r == '＃' }

// ActiveToken finds the hashtag currently being typed at the given cursor
// byte offset. It rejects candidates when no marker precedes the cursor, when
// the marker is glued to the end of another word, or when whitespace
// intervenes between the marker and the cursor (the token must be the word
// in progress, not a completed one).
func ActiveToken(text string, cursor int) (Token, bool) {
	if cursor < 0 || cursor > len(text) {
		return Token{}, false
	}
	head := text[:cursor]
	start := strings.LastIndexFunc(head, isMarker)
	if start < 0 {
		return Token{}, false
	}
	if start > 0 {
		prev, _ := utf8.DecodeLastRuneInString(head[:start])
		if !unicode.IsSpace(prev) {
			return Token{}, false
		}
	}
	_, markerLen := utf8.DecodeRuneInString(head[start:])
	body := head[start+markerLen:]
	if strings.IndexFunc(body, unicode.IsSpace) >= 0 {
		return Token{}, false
	}
	return Token{Start: start, Text: body}, true
}

// Insert replaces the active token with the canonical tag: the span from the
// marker to the end of the current word becomes "#<canonical>", with one
// space appended when autoSpace is set and the following rune is not already
// whitespace. Returns the new text and the cursor position immediately after
// the inserted text (including the appended space, if any).
func Insert(text string, cursor int, tok Token, canonical string, autoSpace bool) (string, int) {
	if tok.Start < 0 || tok.Start > len(text) || cursor < tok.Start || cursor > len(text) {
		return text, cursor
	}
	wordEnd := cursor
	for wordEnd < len(text) {
		r, size := utf8.DecodeRuneInString(text[wordEnd:])
		if unicode.IsSpace(r) {
			break
		}
		wordEnd += size
	}
	inserted := "#" + canonical
	if autoSpace {
		if wordEnd >= len(text) {
			inserted += " "
		} else if r, _ := utf8.DecodeRuneInString(text[wordEnd:]); !unicode.IsSpace(r) {
			inserted += " "
		}
	}
	out := text[:tok.Start] + inserted + text[wordEnd:]
	return out, tok.Start + len(inserted)
}
