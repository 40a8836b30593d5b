// Package program loads, formats and disassembles Intcode memory images.
package program

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/colorfulnotion/intcode/common"
	"github.com/colorfulnotion/intcode/vmerrors"
)

// Program is a named memory image.
type Program struct {
	Name  string  `json:"name"`
	Image []int64 `json:"image"`
}

// Parse reads comma separated signed integers. Whitespace around each
// value, including line breaks, is ignored.
func Parse(text string) ([]int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty program: %w", vmerrors.ErrPMalformedProgram)
	}
	fields := strings.Split(text, ",")
	image := make([]int64, len(fields))
	for i, f := range fields {
		f = strings.TrimSpace(f)
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("value %d %q: %w", i, f, vmerrors.ErrPMalformedProgram)
		}
		image[i] = v
	}
	return image, nil
}

// ReadFile parses the program stored at path.
func ReadFile(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	image, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Program{Name: path, Image: image}, nil
}

// Format renders an image in the form Parse accepts.
func Format(image []int64) string {
	var b strings.Builder
	for i, v := range image {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(v, 10))
	}
	return b.String()
}

// Hash is the content address of the image.
func (p *Program) Hash() common.Hash {
	return common.WordsHash(p.Image)
}

func (p *Program) String() string {
	return fmt.Sprintf("%s (%d words, %s)", p.Name, len(p.Image), p.Hash().String_short())
}
