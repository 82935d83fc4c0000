package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// readSample parses one number per record from r. Records may hold several
// comma-separated fields, in which case column selects one (0-based). Lines
// starting with '#' and empty fields are skipped, and a non-numeric first
// record is taken as a header.
func readSample(r io.Reader, column int) ([]float64, error) {
	if column < 0 {
		return nil, fmt.Errorf("column must be >= 0, got %d", column)
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var sample []float64
	for record := 0; ; record++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read sample: %w", err)
		}
		if column >= len(fields) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: no column %d (%d fields)", line, column, len(fields))
		}
		field := strings.TrimSpace(fields[column])
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			if record == 0 {
				continue
			}
			line, _ := cr.FieldPos(column)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		sample = append(sample, v)
	}
	return sample, nil
}

// openInput returns stdin for no argument or "-", and the named file
// otherwise.
func openInput(args []string, stdin io.Reader) (io.Reader, func() error, error) {
	if len(args) == 0 || args[0] == "-" {
		return stdin, func() error { return nil }, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
