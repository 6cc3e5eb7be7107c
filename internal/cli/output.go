package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// printer writes either a human line or the JSON form of a value.
type printer struct {
	format string
	w      io.Writer
}

func newPrinter(opts *RootOptions, w io.Writer) *printer {
	return &printer{format: opts.Format, w: w}
}

// emit prints text in text mode and v as indented JSON in json mode.
func (p *printer) emit(v any, text string, args ...any) error {
	if p.format == "json" {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintf(p.w, text, args...)
	return err
}
