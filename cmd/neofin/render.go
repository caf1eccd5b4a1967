package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
)

// renderMarkdown styles md for a terminal and falls back to plain text
// when stdout is not one or the renderer cannot be built.
func renderMarkdown(w io.Writer, md string) error {
	if w != io.Writer(os.Stdout) {
		_, err := fmt.Fprintln(w, md)
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		_, err = fmt.Fprintln(w, md)
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		_, err = fmt.Fprintln(w, md)
		return err
	}
	_, err = fmt.Fprint(w, out)
	return err
}
