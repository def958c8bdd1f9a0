package linesort

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLineReader(t *testing.T) {
	long := strings.Repeat("x", 100)
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single_no_newline", "1. a", []string{"1. a"}},
		{"trailing_newline", "1. a\n2. b\n", []string{"1. a", "2. b"}},
		{"crlf", "1. a\r\n2. b\r\n", []string{"1. a", "2. b"}},
		{"blank_lines", "\n\n1. a\n", []string{"", "", "1. a"}},
		{"longer_than_buffer", "1. " + long + "\n2. b", []string{"1. " + long, "2. b"}},
		{"longer_than_buffer_at_eof", "2. b\n1. " + long, []string{"2. b", "1. " + long}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lr := newLineReader(strings.NewReader(tc.input), 16)
			var raw strings.Builder
			lr.raw = func(b []byte) { raw.Write(b) }

			var got []string
			for {
				line, err := lr.next()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					t.Fatal(err)
				}
				got = append(got, string(line))
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("line %d = %q, want %q", i, got[i], tc.want[i])
				}
			}
			if raw.String() != tc.input {
				t.Errorf("raw observer saw %q, want %q", raw.String(), tc.input)
			}
		})
	}
}
