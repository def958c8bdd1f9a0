// Package record parses, formats, and orders "<number>. <text>" lines.
//
// Compare is the single ordering used by both the in-memory run sort and the
// k-way merge heap; any divergence between the two would break the merge.
package record

import (
	"bytes"
	"cmp"
	"strconv"
	"strings"
)

// separator splits the number prefix from the text.
const separator = '.'

// Record is one parsed input line.
type Record struct {
	Number int64
	Text   string
}

// Parse splits line at the first '.' and returns the record it encodes.
//
// The prefix, with surrounding whitespace trimmed, must be a base-10 int64
// with an optional sign. The remainder must be non-empty; its surrounding
// whitespace is trimmed to produce Text. ok is false for anything else.
// line must not include the line terminator.
func Parse(line []byte) (r Record, ok bool) {
	dot := bytes.IndexByte(line, separator)
	if dot < 0 || dot == len(line)-1 {
		return Record{}, false
	}
	prefix := bytes.TrimSpace(line[:dot])
	if len(prefix) == 0 {
		return Record{}, false
	}
	n, err := strconv.ParseInt(string(prefix), 10, 64)
	if err != nil {
		return Record{}, false
	}
	return Record{Number: n, Text: string(bytes.TrimSpace(line[dot+1:]))}, true
}

// AppendFormat appends "<Number>. <Text>" to dst, without a line terminator.
func AppendFormat(dst []byte, r Record) []byte {
	dst = strconv.AppendInt(dst, r.Number, 10)
	dst = append(dst, separator, ' ')
	return append(dst, r.Text...)
}

// Format returns "<Number>. <Text>".
func Format(r Record) string {
	return string(AppendFormat(nil, r))
}

// FormattedLen returns len(Format(r)) without allocating.
func FormattedLen(r Record) int {
	var buf [20]byte
	return len(strconv.AppendInt(buf[:0], r.Number, 10)) + 2 + len(r.Text)
}

// Compare orders by Text (byte-wise), then by Number ascending.
func Compare(a, b Record) int {
	if c := strings.Compare(a.Text, b.Text); c != 0 {
		return c
	}
	return cmp.Compare(a.Number, b.Number)
}
