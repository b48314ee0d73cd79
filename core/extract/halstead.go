package extract

import (
	"encoding/json"
	"fmt"

	"github.com/huangsam/metricsagg/schema"
)

// halsteadTotalKey wraps the file-level totals in radon's per-function output.
const halsteadTotalKey = "total"

// HalsteadEntry is the metrics block reported for one file.
// It is either FlatMetrics or TotalWrappedMetrics.
type HalsteadEntry interface {
	// Metrics returns the metric mapping that should be averaged.
	Metrics() map[string]any
}

// FlatMetrics is a plain metric-name to value mapping.
type FlatMetrics map[string]any

// Metrics implements HalsteadEntry.
func (m FlatMetrics) Metrics() map[string]any { return m }

// TotalWrappedMetrics carries file totals under a "total" key; sibling keys
// (per-function breakdowns) are ignored.
type TotalWrappedMetrics struct {
	Total map[string]any
}

// Metrics implements HalsteadEntry.
func (m TotalWrappedMetrics) Metrics() map[string]any { return m.Total }

// ParseHalsteadEntry decides the entry shape once. A nil entry means the value
// was not an object and should be skipped.
func ParseHalsteadEntry(raw json.RawMessage) (HalsteadEntry, error) {
	v, err := decodeValue(raw)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, nil
	}
	total, wrapped := obj[halsteadTotalKey]
	if !wrapped {
		return FlatMetrics(obj), nil
	}
	totalObj, ok := total.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q must be an object, got %T", ErrParse, halsteadTotalKey, total)
	}
	return TotalWrappedMetrics{Total: totalObj}, nil
}

// Halstead averages radon Halstead metrics per category. Values that do not
// convert to a number are dropped, but their metric still appears in the output.
func Halstead(data []byte) (schema.ExtractResult, error) {
	entries, err := decodeOrderedObject(data)
	if err != nil {
		return nil, err
	}

	s := newSamples()
	for _, entry := range entries {
		parsed, err := ParseHalsteadEntry(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Key, err)
		}
		if parsed == nil {
			continue
		}
		category := categoryOf(IsTestPath(entry.Key))
		for metric, value := range parsed.Metrics() {
			s.register(category, metric)
			if f, ok := lenientNumber(value); ok {
				s.add(category, metric, f)
			}
		}
	}
	return s.averages(), nil
}
