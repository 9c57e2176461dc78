package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/pivotsim/internal/loop"
)

type ExportData struct {
	Meta     RunMetadata `json:"meta"`
	Steps    int         `json:"steps"`
	Times    []float64   `json:"times"`
	States   [][]float64 `json:"states"`
	Controls [][]float64 `json:"controls"`
}

func ExportJSON(w io.Writer, meta RunMetadata, result *loop.Result) error {
	meta.Faults = result.Faults
	meta.Metrics = finiteMetrics(result.Metrics)
	data := ExportData{
		Meta:     meta,
		Steps:    len(result.Times),
		Times:    result.Times,
		States:   make([][]float64, len(result.States)),
		Controls: make([][]float64, len(result.Controls)),
	}
	for i, s := range result.States {
		data.States[i] = s
	}
	for i, c := range result.Controls {
		data.Controls[i] = c
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
