package php

import (
	"bytes"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// NewInputEdit describes replacing old[start:end] with inserted. Offsets are
// bytes; points count rows and byte columns, as tree-sitter expects.
func NewInputEdit(old []byte, start, end int, inserted string) sitter.InputEdit {
	startPoint := pointAt(old, start)
	return sitter.InputEdit{
		StartIndex:  uint(start),
		OldEndIndex: uint(end),
		NewEndIndex: uint(start + len(inserted)),
		StartPoint:  startPoint,
		OldEndPoint: pointAt(old, end),
		NewEndPoint: advance(startPoint, []byte(inserted)),
	}
}

func pointAt(text []byte, offset int) sitter.Point {
	return advance(sitter.Point{}, text[:offset])
}

func advance(p sitter.Point, text []byte) sitter.Point {
	rows := bytes.Count(text, []byte{'\n'})
	if rows == 0 {
		return sitter.Point{Row: p.Row, Column: p.Column + uint(len(text))}
	}
	return sitter.Point{
		Row:    p.Row + uint(rows),
		Column: uint(len(text) - bytes.LastIndexByte(text, '\n') - 1),
	}
}
