package nntp

import (
	"bufio"
	"io"
	"net/textproto"
	"strings"
)

// MaxLineLength is the largest command or multi-line data line this package
// will read, measured in octets. ReadLine counts the CRLF or LF terminator
// of a command line; ReadMultiline measures data lines without it. A line
// that exceeds it is a fatal DataError, per RFC 3977 §3.1.
const MaxLineLength = 2048

// Conn wraps a network connection with the line- and block-oriented framing
// NNTP uses on the wire: CRLF-terminated command lines (bare LF tolerated on
// input), and dot-stuffed multi-line blocks for article bodies, overview
// data and list output.
type Conn struct {
	r       *bufio.Reader
	w       *bufio.Writer
	tp      *textproto.Reader
	MaxLine int // overridable line-length ceiling; defaults to MaxLineLength
}

// NewConn builds a Conn around rw. rw is typically a net.Conn, but any
// io.ReadWriter works, which keeps the framer testable against in-memory
// pipes.
func NewConn(rw io.ReadWriter) *Conn {
	br := bufio.NewReader(rw)
	return &Conn{
		r:       br,
		w:       bufio.NewWriter(rw),
		tp:      textproto.NewReader(br),
		MaxLine: MaxLineLength,
	}
}

// ReadLine reads one CRLF- or bare-LF-terminated command line, with the
// terminator stripped. It returns a *DataError if the line exceeds
// MaxLineLength or the connection closes before a terminator is seen.
//
// This deliberately uses bufio.Reader.ReadSlice rather than ReadLine:
// ReadLine silently swallows the case where the peer closes after sending
// a partial line with no "\n", returning that fragment as if it were a
// complete line. ReadSlice instead reports a non-nil error whenever the
// returned bytes don't end in the delimiter, which is what lets us tell a
// genuine end-of-stream (no bytes at all) apart from a truncated command.
func (c *Conn) ReadLine() (string, error) {
	var buf []byte
	for {
		chunk, err := c.r.ReadSlice('\n')
		buf = append(buf, chunk...)
		if err != nil {
			if err == bufio.ErrBufferFull {
				if len(buf) > c.MaxLine {
					return "", &DataError{Reason: "command line exceeds maximum length"}
				}
				continue
			}
			if err == io.EOF && len(buf) == 0 {
				return "", io.EOF
			}
			return "", &DataError{Reason: "connection closed mid-line: " + err.Error()}
		}
		break
	}
	if len(buf) > c.MaxLine {
		return "", &DataError{Reason: "command line exceeds maximum length"}
	}
	line := strings.TrimSuffix(string(buf), "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// ReadMultiline reads a dot-stuffed block (as sent after ARTICLE/BODY/HEAD,
// an OVER/XOVER response, or a POST payload) and returns its lines with
// stuffing removed and terminators stripped. The terminating lone "." is
// consumed but not returned.
func (c *Conn) ReadMultiline() ([]string, error) {
	var lines []string
	for {
		line, err := c.tp.ReadLine()
		if err != nil {
			return nil, &DataError{Reason: "connection closed mid-block: " + err.Error()}
		}
		if len(line) > c.MaxLine {
			return nil, &DataError{Reason: "data line exceeds maximum length"}
		}
		if line == "." {
			return lines, nil
		}
		if strings.HasPrefix(line, "..") {
			line = line[1:]
		}
		lines = append(lines, line)
	}
}

// WriteLine writes s terminated with CRLF and flushes.
func (c *Conn) WriteLine(s string) error {
	if _, err := c.w.WriteString(s); err != nil {
		return err
	}
	if _, err := c.w.WriteString("\r\n"); err != nil {
		return err
	}
	return c.w.Flush()
}

// WriteMultiline writes lines as a dot-stuffed block terminated by a lone
// ".", applying stuffing to any line that itself begins with a dot.
func (c *Conn) WriteMultiline(lines []string) error {
	for _, line := range lines {
		if strings.HasPrefix(line, ".") {
			line = "." + line
		}
		if _, err := c.w.WriteString(line); err != nil {
			return err
		}
		if _, err := c.w.WriteString("\r\n"); err != nil {
			return err
		}
	}
	if _, err := c.w.WriteString(".\r\n"); err != nil {
		return err
	}
	return c.w.Flush()
}
