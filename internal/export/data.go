package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/san-kum/oscsim/internal/analysis"
	"github.com/san-kum/oscsim/internal/dynamo"
)

// Metadata describes one run alongside its series.
type Metadata struct {
	ID              string             `json:"id"`
	Timestamp       time.Time          `json:"timestamp"`
	Params          dynamo.Params      `json:"params"`
	Strict          bool               `json:"strict,omitempty"`
	RejectNonFinite bool               `json:"reject_non_finite,omitempty"`
	Regime          analysis.Regime    `json:"regime"`
	Metrics         map[string]float64 `json:"metrics"`
}

// Number encodes NaN and ±Inf as JSON null.
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	v := float64(n)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func (n *Number) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = Number(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = Number(v)
	return nil
}

type ExportData struct {
	Metadata
	Steps     int      `json:"steps"`
	Times     []Number `json:"times"`
	Kinetic   []Number `json:"kinetic"`
	Potential []Number `json:"potential"`
	Total     []Number `json:"total"`
}

func numbers(vs []float64) []Number {
	out := make([]Number, len(vs))
	for i, v := range vs {
		out[i] = Number(v)
	}
	return out
}

func floats(ns []Number) []float64 {
	out := make([]float64, len(ns))
	for i, n := range ns {
		out[i] = float64(n)
	}
	return out
}

// FiniteMetrics drops NaN and ±Inf metric values, which JSON cannot carry.
func FiniteMetrics(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[k] = v
	}
	return out
}

func WriteJSON(w io.Writer, meta Metadata, s dynamo.Series) error {
	meta.Metrics = FiniteMetrics(meta.Metrics)
	data := ExportData{
		Metadata:  meta,
		Steps:     s.Len(),
		Times:     numbers(s.Times),
		Kinetic:   numbers(s.Kinetic),
		Potential: numbers(s.Potential),
		Total:     numbers(s.Total),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ReadJSON decodes a document written by WriteJSON; nulls come back as NaN.
func ReadJSON(r io.Reader) (Metadata, dynamo.Series, error) {
	var data ExportData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return Metadata{}, dynamo.Series{}, err
	}
	s := dynamo.Series{
		Times:     floats(data.Times),
		Kinetic:   floats(data.Kinetic),
		Potential: floats(data.Potential),
		Total:     floats(data.Total),
	}
	return data.Metadata, s, nil
}

var csvHeader = []string{"time", "kinetic", "potential", "total"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func WriteCSV(w io.Writer, s dynamo.Series) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for i := 0; i < s.Len(); i++ {
		row := []string{
			formatFloat(s.Times[i]),
			formatFloat(s.Kinetic[i]),
			formatFloat(s.Potential[i]),
			formatFloat(s.Total[i]),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a file written by WriteCSV.
func ReadCSV(r io.Reader) (dynamo.Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return dynamo.Series{}, err
	}

	if len(records) < 1 {
		return dynamo.Series{}, fmt.Errorf("export: missing csv header")
	}

	s := dynamo.NewSeries(len(records) - 1)
	for i, record := range records[1:] {
		var vals [4]float64
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return dynamo.Series{}, fmt.Errorf("export: row %d column %s: %w", i+2, csvHeader[j], err)
			}
			vals[j] = v
		}
		s.Append(dynamo.Sample{Time: vals[0], Kinetic: vals[1], Potential: vals[2], Total: vals[3]})
	}

	return s, nil
}
