package program

import (
	"encoding/json"

	"github.com/nsf/jsondiff"
)

// DiffImages compares two images cell by cell and reports only the cells
// that differ.
func DiffImages(a, b []int64) (bool, string, error) {
	left, err := json.Marshal(a)
	if err != nil {
		return false, "", err
	}
	right, err := json.Marshal(b)
	if err != nil {
		return false, "", err
	}
	opts := jsondiff.DefaultConsoleOptions()
	opts.SkipMatches = true
	diff, report := jsondiff.Compare(left, right, &opts)
	return diff == jsondiff.FullMatch, report, nil
}
