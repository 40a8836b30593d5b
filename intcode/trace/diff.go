package trace

import (
	"encoding/json"
	"fmt"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// Divergence describes the first step at which two traces differ.
// Expected or Actual is nil when one trace ends early.
type Divergence struct {
	Index    int
	Expected *Step
	Actual   *Step
	Report   string
}

// Diff compares two traces step by step and returns the first divergence,
// or nil when they are identical.
func Diff(expected, actual []*Step) (*Divergence, error) {
	n := min(len(expected), len(actual))
	differ := gojsondiff.New()
	for i := 0; i < n; i++ {
		expJSON, err := json.Marshal(expected[i])
		if err != nil {
			return nil, err
		}
		actJSON, err := json.Marshal(actual[i])
		if err != nil {
			return nil, err
		}
		delta, err := differ.Compare(expJSON, actJSON)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		if !delta.Modified() {
			continue
		}
		var leftObj map[string]interface{}
		if err := json.Unmarshal(expJSON, &leftObj); err != nil {
			return nil, err
		}
		asciiFmt := formatter.NewAsciiFormatter(leftObj, formatter.AsciiFormatterConfig{
			ShowArrayIndex: true,
			Coloring:       false,
		})
		report, err := asciiFmt.Format(delta)
		if err != nil {
			return nil, err
		}
		return &Divergence{Index: i, Expected: expected[i], Actual: actual[i], Report: report}, nil
	}
	if len(expected) == len(actual) {
		return nil, nil
	}
	d := &Divergence{Index: n}
	if n < len(expected) {
		d.Expected = expected[n]
		d.Report = fmt.Sprintf("actual trace ends after %d steps, expected %d", len(actual), len(expected))
	} else {
		d.Actual = actual[n]
		d.Report = fmt.Sprintf("actual trace continues past %d steps", len(expected))
	}
	return d, nil
}
