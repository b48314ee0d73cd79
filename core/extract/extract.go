// Package extract reads analyzer output files (radon, lizard) and averages their
// metrics into test and non-test buckets.
package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/huangsam/metricsagg/schema"
)

// Sentinel errors shared by all extractors. Callers match them with errors.Is.
var (
	// ErrParse reports a malformed XML or JSON document.
	ErrParse = errors.New("parse error")

	// ErrValueConversion reports a field that should be numeric but is not.
	ErrValueConversion = errors.New("value conversion error")
)

// testPathMarker classifies JSON-keyed files as test code.
const testPathMarker = "/tests/"

// Func parses the content of one analyzer file.
type Func func(data []byte) (schema.ExtractResult, error)

// registry maps each known source file to its extractor.
var registry = map[schema.SourceFile]Func{
	schema.ComplexityFile: Complexity,
	schema.LizardFile:     Lizard,
	schema.HalsteadFile:   Halstead,
	schema.RawMetricsFile: RawMetrics,
}

// ForSource returns the extractor registered for a source file name.
func ForSource(source schema.SourceFile) (Func, bool) {
	fn, ok := registry[source]
	return fn, ok
}

// File reads path fully and runs the extractor for source on its content.
func File(source schema.SourceFile, path string) (schema.ExtractResult, error) {
	fn, ok := ForSource(source)
	if !ok {
		return nil, fmt.Errorf("no extractor for %s", source)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	result, err := fn(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return result, nil
}

// IsTestPath reports whether a file path from a radon report belongs to test code.
func IsTestPath(path string) bool {
	return strings.Contains(path, testPathMarker)
}

// categoryOf maps a classification result to its category.
func categoryOf(isTest bool) schema.Category {
	if isTest {
		return schema.TestCategory
	}
	return schema.NonTestCategory
}

// mean returns the arithmetic mean, or 0 for an empty list.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// samples collects observed values per category and metric.
type samples map[schema.Category]map[string][]float64

func newSamples() samples {
	s := make(samples, len(schema.AllCategories))
	for _, c := range schema.AllCategories {
		s[c] = make(map[string][]float64)
	}
	return s
}

// register makes a metric visible for the category even if no value is ever added.
func (s samples) register(c schema.Category, metric string) {
	if _, ok := s[c][metric]; !ok {
		s[c][metric] = nil
	}
}

func (s samples) add(c schema.Category, metric string, v float64) {
	s[c][metric] = append(s[c][metric], v)
}

// averages reduces the samples to per-category means.
func (s samples) averages() schema.ExtractResult {
	result := make(schema.ExtractResult, len(s))
	for c, metrics := range s {
		record := make(schema.MetricRecord, len(metrics))
		for name, values := range metrics {
			record[name] = mean(values)
		}
		result[c] = record
	}
	return result
}

// jsonEntry is a single member of a JSON object, kept in document order.
type jsonEntry struct {
	Key   string
	Value json.RawMessage
}

// decodeOrderedObject decodes a top-level JSON object into its members in document order.
// Averages are sums in document order, which keeps repeated runs byte-identical.
// A duplicated key keeps its first position and its last value.
func decodeOrderedObject(data []byte) ([]jsonEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object at the top level", ErrParse)
	}

	var entries []jsonEntry
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected token %v", ErrParse, tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		if i, seen := index[key]; seen {
			entries[i].Value = raw
			continue
		}
		index[key] = len(entries)
		entries = append(entries, jsonEntry{Key: key, Value: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if _, err := dec.Token(); err == nil {
		return nil, fmt.Errorf("%w: trailing data after JSON object", ErrParse)
	}
	return entries, nil
}

// decodeValue unmarshals a raw JSON member keeping numbers as json.Number.
func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return v, nil
}

// strictNumber accepts JSON numbers and booleans (true is 1, false is 0).
func strictNumber(v any) (float64, error) {
	switch t := v.(type) {
	case json.Number:
		f, err := parseFloat(t.String())
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrValueConversion, err)
		}
		return f, nil
	case bool:
		return boolNumber(t), nil
	default:
		return 0, fmt.Errorf("%w: %v (%T) is not a number", ErrValueConversion, v, v)
	}
}

// lenientNumber converts numbers, numeric strings and booleans, reporting false otherwise.
func lenientNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := parseFloat(t.String())
		return f, err == nil
	case string:
		f, err := parseFloat(strings.TrimSpace(t))
		return f, err == nil
	case bool:
		return boolNumber(t), true
	default:
		return 0, false
	}
}

// parseFloat parses s as a float64. Magnitudes beyond the float64 range
// become ±Inf instead of failing.
func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	return f, nil
}

func boolNumber(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
