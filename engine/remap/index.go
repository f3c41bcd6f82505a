package remap

import "unicode/utf8"

// IndexTable translates between byte offsets and character indices of a
// text. Shaping engines report clusters as byte offsets, while styles and
// character records are indexed by character.
type IndexTable struct {
	byteToChar []int // per byte of the text
	charToByte []int // per character, plus one entry for the end of text
}

// NewIndexTable creates an index table for text.
func NewIndexTable(text string) *IndexTable {
	t := &IndexTable{
		byteToChar: make([]int, len(text)),
		charToByte: make([]int, 0, utf8.RuneCountInString(text)+1),
	}
	ci := 0
	for bi := range text {
		t.charToByte = append(t.charToByte, bi)
		ci = len(t.charToByte) - 1
		_, size := utf8.DecodeRuneInString(text[bi:])
		for k := 0; k < size; k++ {
			t.byteToChar[bi+k] = ci
		}
	}
	t.charToByte = append(t.charToByte, len(text))
	return t
}

// BuildByteToChar returns a table with an entry per byte of text, holding
// the index of the character the byte belongs to.
func BuildByteToChar(text string) []int {
	return NewIndexTable(text).byteToChar
}

// ByteToChar returns the byte to character table. Clients must not modify it.
func (t *IndexTable) ByteToChar() []int {
	return t.byteToChar
}

// CharCount returns the number of characters of the text.
func (t *IndexTable) CharCount() int {
	return len(t.charToByte) - 1
}

// ByteCount returns the length of the text in bytes.
func (t *IndexTable) ByteCount() int {
	return len(t.byteToChar)
}

// CharAt returns the index of the character containing a byte offset.
// Offsets before the text map to 0, offsets behind it to the character count.
func (t *IndexTable) CharAt(byteOffset int) int {
	if byteOffset < 0 {
		return 0
	}
	if byteOffset >= len(t.byteToChar) {
		return t.CharCount()
	}
	return t.byteToChar[byteOffset]
}

// ByteAt returns the byte offset of a character, clamped to [0, len(text)].
func (t *IndexTable) ByteAt(charIndex int) int {
	if charIndex < 0 {
		return 0
	}
	if charIndex >= len(t.charToByte) {
		return t.charToByte[len(t.charToByte)-1]
	}
	return t.charToByte[charIndex]
}
