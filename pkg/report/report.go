package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fsbridge/pkg/errors"
	"fsbridge/pkg/types"
)

// Sink persists a rendered report. *bridge.Bridge satisfies it.
type Sink interface {
	Write(path string, data []byte) error
}

// Renderer handles batch report generation
type Renderer struct {
	sink Sink
	now  func() time.Time
}

// NewRenderer creates a new renderer writing through sink
func NewRenderer(sink Sink) *Renderer {
	return &Renderer{sink: sink, now: time.Now}
}

// Generate writes results in the format implied by the file extension
// (.csv or .json)
func (r *Renderer) Generate(results []types.OpResult, filename string) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return r.GenerateCSV(results, filename)
	case ".json":
		return r.GenerateJSON(results, filename)
	default:
		return errors.ValidationErrorf("unsupported report format %q", filepath.Ext(filename))
	}
}

// GenerateCSV generates a CSV report
func (r *Renderer) GenerateCSV(results []types.OpResult, filename string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Op", "Path", "Success", "Bytes", "DurationMs", "Error"}); err != nil {
		return errors.Wrap(err, errors.ErrorTypeWrite, "failed to write CSV header")
	}
	for _, res := range results {
		row := []string{
			string(res.Op),
			res.Path,
			strconv.FormatBool(res.Success),
			strconv.Itoa(res.Bytes),
			strconv.FormatFloat(float64(res.Duration)/float64(time.Millisecond), 'f', 3, 64),
			res.Error,
		}
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, errors.ErrorTypeWrite, "failed to write CSV row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeWrite, "failed to flush CSV")
	}
	return r.sink.Write(filename, buf.Bytes())
}

// GenerateJSON generates a JSON report
func (r *Renderer) GenerateJSON(results []types.OpResult, filename string) error {
	report := struct {
		GeneratedAt string           `json:"generated_at"`
		Results     []types.OpResult `json:"results"`
		Summary     struct {
			Total   int `json:"total"`
			Success int `json:"success"`
			Failure int `json:"failure"`
			Bytes   int `json:"bytes"`
		} `json:"summary"`
	}{
		GeneratedAt: r.now().Format(time.RFC3339),
		Results:     results,
	}

	for _, res := range results {
		report.Summary.Total++
		report.Summary.Bytes += res.Bytes
		if res.Failed() {
			report.Summary.Failure++
		} else {
			report.Summary.Success++
		}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return errors.Wrap(err, errors.ErrorTypeWrite, "failed to encode JSON report")
	}
	return r.sink.Write(filename, buf.Bytes())
}
