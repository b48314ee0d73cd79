package extract

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/huangsam/metricsagg/schema"
	"golang.org/x/net/html/charset"
)

// Lizard metric names, in the order their <value> children appear.
const (
	LizardRecords = "Nr"
	LizardNCSS    = "NCSS"
	LizardCCN     = "CCN"
)

var lizardMetrics = []string{LizardRecords, LizardNCSS, LizardCCN}

// xmlMarker starts the XML document inside a lizard report that may carry a preamble.
var xmlMarker = []byte("<?xml version")

// lizardTestName matches the whole word "test" or "tests". Only letters and digits
// extend a word, so "test_foo" and "foo_tests" match while "testing" does not.
var lizardTestName = regexp.MustCompile(`(?:^|[^\p{L}\p{N}])tests?(?:[^\p{L}\p{N}]|$)`)

// lizardItem is one <item> of the cppncss-style report.
type lizardItem struct {
	Name   string
	Values []string
}

// IsTestName reports whether a lizard item name belongs to test code.
func IsTestName(name string) bool {
	return lizardTestName.MatchString(name)
}

// Lizard averages Nr, NCSS and CCN of every <item> in a lizard XML report.
func Lizard(data []byte) (schema.ExtractResult, error) {
	if start := bytes.Index(data, xmlMarker); start != -1 {
		data = data[start:]
	}

	items, err := decodeLizardItems(data)
	if err != nil {
		return nil, err
	}

	s := newSamples()
	for _, c := range schema.AllCategories {
		for _, metric := range lizardMetrics {
			s.register(c, metric)
		}
	}

	for _, item := range items {
		values, err := item.metricValues()
		if err != nil {
			return nil, err
		}
		if item.Name == "" || len(values) == 0 {
			continue
		}
		if len(values) < len(lizardMetrics) {
			return nil, fmt.Errorf("%w: item %q has %d values, need %d", ErrValueConversion, item.Name, len(values), len(lizardMetrics))
		}
		category := categoryOf(IsTestName(item.Name))
		for i, metric := range lizardMetrics {
			s.add(category, metric, float64(values[i]))
		}
	}
	return s.averages(), nil
}

// metricValues converts the leading <value> children of the item, named or not.
func (item lizardItem) metricValues() ([]int, error) {
	n := min(len(item.Values), len(lizardMetrics))
	values := make([]int, 0, n)
	for i := range n {
		v, err := strconv.Atoi(strings.TrimSpace(item.Values[i]))
		if err != nil {
			return nil, fmt.Errorf("%w: item %q %s: %v", ErrValueConversion, item.Name, lizardMetrics[i], err)
		}
		values = append(values, v)
	}
	return values, nil
}

// lizardFrame is one open element while walking the report.
type lizardFrame struct {
	item     int  // index into items when the element is an <item>, else -1
	value    int  // index into items when the element is a <value> child of an <item>, else -1
	hasChild bool // text after the first child element is not part of the value
}

// decodeLizardItems walks the whole document and collects every <item>, at any depth,
// in document order. Only direct <value> children belong to an item; the text before
// a value's first child element is its content.
func decodeLizardItems(data []byte) ([]lizardItem, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	var (
		items   []lizardItem
		stack   []lizardFrame
		sawRoot bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			sawRoot = true
			frame := lizardFrame{item: -1, value: -1}
			var parent *lizardFrame
			if len(stack) > 0 {
				parent = &stack[len(stack)-1]
				parent.hasChild = true
			}
			switch {
			case t.Name.Local == "item":
				var name string
				for _, attr := range t.Attr {
					if attr.Name.Local == "name" {
						name = attr.Value
					}
				}
				items = append(items, lizardItem{Name: name})
				frame.item = len(items) - 1
			case t.Name.Local == "value" && parent != nil && parent.item >= 0:
				items[parent.item].Values = append(items[parent.item].Values, "")
				frame.value = parent.item
			}
			stack = append(stack, frame)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			if top.value < 0 || top.hasChild {
				continue
			}
			vals := items[top.value].Values
			vals[len(vals)-1] += string(t)
		}
	}
	if !sawRoot {
		return nil, fmt.Errorf("%w: no root element found", ErrParse)
	}
	return items, nil
}
