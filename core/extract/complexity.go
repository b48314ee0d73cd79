package extract

import (
	"fmt"
	"slices"

	"github.com/huangsam/metricsagg/schema"
)

// Complexity metric names.
const (
	AvgMethodComplexity = "average_method_complexity"
	AvgClassComplexity  = "average_class_complexity"
	TotalMethods        = "total_methods"
	TotalClasses        = "total_classes"
	MaxMethodComplexity = "max_method_complexity"
	MinMethodComplexity = "min_method_complexity"
)

// Element types found in radon cc output.
const (
	functionType = "function"
	methodType   = "method"
	classType    = "class"
)

// complexityBuckets holds complexity values of one category.
type complexityBuckets struct {
	methods []float64
	classes []float64
}

// record summarizes the buckets. Empty buckets yield 0 everywhere, so a
// min of 0 is indistinguishable from a real zero-complexity function.
func (b complexityBuckets) record() schema.MetricRecord {
	rec := schema.MetricRecord{
		AvgMethodComplexity: mean(b.methods),
		AvgClassComplexity:  mean(b.classes),
		TotalMethods:        float64(len(b.methods)),
		TotalClasses:        float64(len(b.classes)),
		MaxMethodComplexity: 0,
		MinMethodComplexity: 0,
	}
	if len(b.methods) > 0 {
		rec[MaxMethodComplexity] = slices.Max(b.methods)
		rec[MinMethodComplexity] = slices.Min(b.methods)
	}
	return rec
}

// Complexity summarizes radon cyclomatic complexity blocks into method and class
// statistics per category.
func Complexity(data []byte) (schema.ExtractResult, error) {
	entries, err := decodeOrderedObject(data)
	if err != nil {
		return nil, err
	}

	buckets := map[schema.Category]*complexityBuckets{
		schema.TestCategory:    {},
		schema.NonTestCategory: {},
	}

	for _, entry := range entries {
		v, err := decodeValue(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Key, err)
		}
		elements, ok := v.([]any)
		if !ok {
			continue
		}
		b := buckets[categoryOf(IsTestPath(entry.Key))]
		for _, el := range elements {
			block, ok := el.(map[string]any)
			if !ok {
				continue
			}
			kind, hasType := block["type"]
			raw, hasComplexity := block["complexity"]
			if !hasType || !hasComplexity {
				continue
			}
			switch kind {
			case functionType, methodType:
				c, err := strictNumber(raw)
				if err != nil {
					return nil, fmt.Errorf("%s: complexity: %w", entry.Key, err)
				}
				b.methods = append(b.methods, c)
			case classType:
				c, err := strictNumber(raw)
				if err != nil {
					return nil, fmt.Errorf("%s: complexity: %w", entry.Key, err)
				}
				b.classes = append(b.classes, c)
			}
		}
	}

	result := make(schema.ExtractResult, len(buckets))
	for c, b := range buckets {
		result[c] = b.record()
	}
	return result, nil
}
