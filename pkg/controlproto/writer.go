package controlproto

import (
	"bufio"
	"io"
	"strings"
)

type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteCommand sends one CRLF-terminated command line and flushes it.
func (w *Writer) WriteCommand(verb string, args ...string) error {
	parts := append([]string{verb}, args...)
	if _, err := w.w.WriteString(strings.Join(parts, " ") + "\r\n"); err != nil {
		return err
	}
	return w.w.Flush()
}
