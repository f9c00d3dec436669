package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// printer writes command results as aligned text or as JSON.
type printer struct {
	w    io.Writer
	json bool
}

func newPrinter(w io.Writer, format string) (*printer, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return &printer{w: w}, nil
	case "json":
		return &printer{w: w, json: true}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text or json)", format)
	}
}

// result prints v as JSON, or calls text when the format is text.
func (p *printer) result(v any, text func(w io.Writer)) error {
	if p.json {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(p.w)
	return nil
}

// table prints v as JSON, or as a tab-aligned table.
func (p *printer) table(v any, header []string, rows [][]string) error {
	return p.result(v, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(header, "\t"))
		for _, row := range rows {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		tw.Flush()
	})
}

// message prints a one-line acknowledgement.
func (p *printer) message(text string) error {
	return p.result(map[string]string{"message": text}, func(w io.Writer) {
		fmt.Fprintln(w, text)
	})
}
