package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/popsim/internal/sim"
)

// ExportJSON writes the full result as indented JSON.
func ExportJSON(w io.Writer, res *sim.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// ExportCSV writes the histories of res as long-format CSV with a header.
func ExportCSV(w io.Writer, res *sim.Result) error {
	samples := Samples(res)
	if len(samples) == 0 {
		return nil
	}
	return gocsv.Marshal(samples, w)
}

// ExportFile writes res to path using export, or to stdout when path is "-".
func ExportFile(path string, res *sim.Result, export func(io.Writer, *sim.Result) error) error {
	if path == "-" || path == "" {
		return export(os.Stdout, res)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
