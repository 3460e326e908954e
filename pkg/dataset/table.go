package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Record is one row of a label table: the sample id and its label values.
type Record struct {
	ID     int
	Values []float64
}

// Table is a parsed label file. Every record carries either four raw values
// (m1, m2, b1, b2) or three reduced values (w1, q1, q2).
type Table struct {
	Header  []string
	Records []Record
}

// LoadTable reads a label table from a CSV file.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open label table")
	}
	defer f.Close()

	t, err := ReadTable(f)
	if err != nil {
		return nil, errors.WithMessagef(err, "label table %s", path)
	}
	return t, nil
}

// ReadTable parses a CSV label table. The first row is a header; each
// following row is an integer id and three or four floats.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("empty label table")
	}
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	width := len(header) - 1
	if width != 3 && width != 4 {
		return nil, errors.Errorf("expected 3 or 4 label columns, header has %d", width)
	}

	t := &Table{Header: header}
	for row := 2; ; row++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", row)
		}

		rec, err := parseRecord(fields)
		if err != nil {
			return nil, errors.WithMessagef(err, "row %d", row)
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

func parseRecord(fields []string) (Record, error) {
	id, err := parseID(fields[0])
	if err != nil {
		return Record{}, err
	}

	values := make([]float64, len(fields)-1)
	for i, f := range fields[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Record{}, errors.Wrapf(err, "column %d", i+2)
		}
		values[i] = v
	}
	return Record{ID: id, Values: values}, nil
}

// parseID accepts "7" and the "7.0" pandas writes for float-typed columns.
func parseID(s string) (int, error) {
	s = strings.TrimSpace(s)
	if id, err := strconv.Atoi(s); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, errors.Errorf("invalid sample id %q", s)
	}
	return int(f), nil
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// Reduced reports whether the table holds (w1, q1, q2) labels.
func (t *Table) Reduced() bool {
	return len(t.Header) == 4
}
