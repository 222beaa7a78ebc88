package server

import (
	"strings"
	"unicode/utf16"

	"github.com/shinyvision/sniffctx/internal/token"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// lineAt returns the zero-based line of text without its terminator.
func lineAt(text string, line int) string {
	for range line {
		nl := strings.IndexByte(text, '\n')
		if nl < 0 {
			return ""
		}
		text = text[nl+1:]
	}
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[:nl]
	}
	return strings.TrimSuffix(text, "\r")
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// tokenRange converts a token's byte location into an LSP range. Tokens
// spanning several lines are cut at the end of their first line.
func tokenRange(text string, tok token.Token) protocol.Range {
	line := lineAt(text, tok.Line)
	start := min(tok.Column, len(line))
	width := len(tok.Content)
	if nl := strings.IndexByte(tok.Content, '\n'); nl >= 0 {
		width = nl
	}
	end := min(start+width, len(line))

	startChar := utf16Len(line[:start])
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(tok.Line), Character: protocol.UInteger(startChar)},
		End:   protocol.Position{Line: protocol.UInteger(tok.Line), Character: protocol.UInteger(startChar + utf16Len(line[start:end]))},
	}
}

// byteColumn converts the UTF-16 character offset of pos into a byte column
// on its line.
func byteColumn(text string, pos protocol.Position) int {
	offset := pos.IndexIn(text)
	if offset < 0 || offset > len(text) {
		return 0
	}
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	return offset - lineStart
}
