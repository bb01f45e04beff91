package flows

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"figaroflows/internal/model"
)

// Metadata holds the fields packed into the composite first column of a row.
type Metadata struct {
	Freq   string
	NaceR2 string
	CExp   string
	Unit   string
	Geo    string
}

func (m Metadata) Fields() []string {
	return []string{m.Freq, m.NaceR2, m.CExp, m.Unit, m.Geo}
}

type yearColumn struct {
	label  string
	values []float64
}

// Table is a fully materialized FIGARO TSV file. It is not modified after
// Decode returns; accessors hand out copies.
type Table struct {
	path     string
	metadata []Metadata
	columns  []yearColumn
}

// Decode reads the TSV file at path into a Table. The file is closed before
// Decode returns.
func Decode(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &Error{Kind: KindIO, Path: path, Err: err}
	}
	defer file.Close()

	table, err := DecodeReader(file)
	if err != nil {
		var flowErr *Error
		if errors.As(err, &flowErr) {
			flowErr.Path = path
		}
		return nil, err
	}
	table.path = path
	return table, nil
}

// DecodeReader is Decode for an already opened source.
func DecodeReader(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &Error{Kind: KindMalformedTable, Err: errors.New("file is empty")}
		}
		return nil, readError(err)
	}

	table := &Table{columns: make([]yearColumn, 0, len(header)-1)}
	for _, label := range header[1:] {
		table.columns = append(table.columns, yearColumn{label: strings.TrimSpace(label)})
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readError(err)
		}

		table.metadata = append(table.metadata, splitMetadata(record[0]))
		for i := range table.columns {
			raw := ""
			if i+1 < len(record) {
				raw = record[i+1]
			}
			table.columns[i].values = append(table.columns[i].values, parseValue(raw))
		}
	}

	return table, nil
}

func readError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &Error{Kind: KindMalformedTable, Err: err}
	}
	return &Error{Kind: KindIO, Err: err}
}

func splitMetadata(composite string) Metadata {
	var fields [5]string
	if composite != "" {
		copy(fields[:], strings.SplitN(composite, ",", len(fields)+1))
	}
	return Metadata{
		Freq:   fields[0],
		NaceR2: fields[1],
		CExp:   fields[2],
		Unit:   fields[3],
		Geo:    fields[4],
	}
}

// parseValue maps anything that is not a decimal number, including Eurostat's
// ":" marker and flagged values such as "12.5 p", to NaN.
func parseValue(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}
	return value
}

func (t *Table) Path() string {
	return t.path
}

func (t *Table) Len() int {
	return len(t.metadata)
}

func (t *Table) Row(i int) Metadata {
	return t.metadata[i]
}

// Field returns one metadata column by name (freq, nace_r2, c_exp, unit, geo).
func (t *Table) Field(name string) ([]string, bool) {
	index := -1
	for i, field := range model.MetadataFields {
		if field == name {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, false
	}
	values := make([]string, len(t.metadata))
	for i, row := range t.metadata {
		values[i] = row.Fields()[index]
	}
	return values, true
}

func (t *Table) YearLabels() []string {
	labels := make([]string, len(t.columns))
	for i, column := range t.columns {
		labels[i] = column.label
	}
	return labels
}

// Column returns a copy of the values under the given year label.
func (t *Table) Column(label string) ([]float64, bool) {
	values, ok := t.column(label)
	if !ok {
		return nil, false
	}
	return append([]float64(nil), values...), true
}

func (t *Table) column(label string) ([]float64, bool) {
	for _, column := range t.columns {
		if column.label == label {
			return column.values, true
		}
	}
	return nil, false
}

// Years returns the year labels that are plain integers, sorted ascending.
func (t *Table) Years() []int {
	years := make([]int, 0, len(t.columns))
	for _, column := range t.columns {
		year, err := strconv.Atoi(column.label)
		if err != nil {
			continue
		}
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}
