package extract

import (
	"fmt"

	"github.com/huangsam/metricsagg/schema"
)

// RawMetrics averages radon raw size metrics (loc, lloc, sloc, comments, ...) per category.
// Unlike Halstead, every value must already be a JSON number.
func RawMetrics(data []byte) (schema.ExtractResult, error) {
	entries, err := decodeOrderedObject(data)
	if err != nil {
		return nil, err
	}

	s := newSamples()
	for _, entry := range entries {
		v, err := decodeValue(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Key, err)
		}
		metrics, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: %w: expected an object of metrics, got %T", entry.Key, ErrValueConversion, v)
		}
		category := categoryOf(IsTestPath(entry.Key))
		for metric, value := range metrics {
			f, err := strictNumber(value)
			if err != nil {
				return nil, fmt.Errorf("%s: %s: %w", entry.Key, metric, err)
			}
			s.add(category, metric, f)
		}
	}
	return s.averages(), nil
}
