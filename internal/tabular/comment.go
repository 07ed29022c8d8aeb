package tabular

import (
	"bufio"
	"io"
	"unicode/utf8"
)

type scanState int

const (
	atFieldStart scanState = iota
	inField
	inQuotes
	quoteInQuotes
	inComment
)

// commentStripper drops everything from an unquoted comment rune to the end
// of its line. Line breaks are kept so csv.Reader sees a blank line, which it
// skips, for lines that were only a comment.
type commentStripper struct {
	src     *bufio.Reader
	sep     rune
	comment rune
	state   scanState
	pending []byte
	err     error
}

func stripComments(r io.Reader, sep, comment rune) io.Reader {
	return &commentStripper{src: bufio.NewReader(r), sep: sep, comment: comment}
}

func (c *commentStripper) Read(p []byte) (int, error) {
	for len(c.pending) < len(p) && c.err == nil {
		r, size, err := c.src.ReadRune()
		if err != nil {
			c.err = err
			break
		}
		if !c.keep(r) {
			continue
		}
		if r == utf8.RuneError && size == 1 {
			// Pass invalid bytes through untouched.
			_ = c.src.UnreadRune()
			b, _ := c.src.ReadByte()
			c.pending = append(c.pending, b)
			continue
		}
		c.pending = utf8.AppendRune(c.pending, r)
	}
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	if n == 0 && c.err != nil {
		return 0, c.err
	}
	return n, nil
}

// keep advances the quote state machine and reports whether r is emitted.
// A quote only opens a quoted field at the start of a field.
func (c *commentStripper) keep(r rune) bool {
	if c.state == inComment {
		if r == '\n' {
			c.state = atFieldStart
			return true
		}
		return false
	}
	if c.state == inQuotes {
		if r == '"' {
			c.state = quoteInQuotes
		}
		return true
	}
	if c.state == quoteInQuotes && r == '"' {
		c.state = inQuotes
		return true
	}

	switch {
	case r == c.comment:
		c.state = inComment
		return false
	case r == '\n' || r == c.sep:
		c.state = atFieldStart
	case r == '"' && c.state == atFieldStart:
		c.state = inQuotes
	default:
		c.state = inField
	}
	return true
}
