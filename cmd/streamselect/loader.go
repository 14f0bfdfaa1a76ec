package main

import (
	"encoding/json"
	"os"

	"github.com/arlowind/streamselect/internal/types"
)

// formatDocument is the JSON shape the CLI reads: a candidate format list
// plus the enclosing info dict the filter language evaluates against. This
// is a minimal stand-in for "a host already has a format list" — it is not
// an extractor and performs no network I/O beyond reading this file.
type formatDocument struct {
	Formats  []types.FormatDescriptor `json:"formats"`
	InfoDict map[string]any           `json:"info_dict"`
}

func loadDocument(path string) (*formatDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var doc formatDocument
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
