// Package snippet builds insertion text in LSP snippet syntax.
package snippet

import (
	"strconv"
	"strings"
)

// Builder assembles a snippet string from literal text, pre-filled
// placeholders, and empty tab stops. Tab-stop ordinals are assigned in
// append order starting at 1.
type Builder struct {
	sb   strings.Builder
	next int
}

func NewBuilder() *Builder {
	return &Builder{next: 1}
}

// AppendText appends literal text, escaping snippet metacharacters.
func (b *Builder) AppendText(text string) *Builder {
	b.sb.WriteString(escape(text))
	return b
}

// AppendPlaceholder appends a tab stop pre-filled with value.
func (b *Builder) AppendPlaceholder(value string) *Builder {
	b.sb.WriteString("${")
	b.sb.WriteString(strconv.Itoa(b.next))
	b.sb.WriteString(":")
	b.sb.WriteString(escape(value))
	b.sb.WriteString("}")
	b.next++
	return b
}

// AppendTabStop appends an empty tab stop.
func (b *Builder) AppendTabStop() *Builder {
	b.sb.WriteString("$")
	b.sb.WriteString(strconv.Itoa(b.next))
	b.next++
	return b
}

// String returns the assembled snippet text.
func (b *Builder) String() string {
	return b.sb.String()
}

// escape backslash-escapes the characters that carry meaning in snippet
// syntax: '\', '$' and '}'.
func escape(s string) string {
	if !strings.ContainsAny(s, "\\$}") {
		return s
	}
	var out strings.Builder
	out.Grow(len(s) + 2)
	for _, r := range s {
		switch r {
		case '\\', '$', '}':
			out.WriteByte('\\')
		}
		out.WriteRune(r)
	}
	return out.String()
}
