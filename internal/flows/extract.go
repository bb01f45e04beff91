package flows

import (
	"errors"
	"math"
	"strconv"

	"figaroflows/internal/model"
)

type Options struct {
	// MinValue drops records below the threshold. Nil keeps every present value.
	MinValue *float64
}

// Extract returns the import flows of year followed by its export flows.
func Extract(imports, exports *Table, year int) ([]model.FlowRecord, error) {
	return ExtractWithOptions(imports, exports, year, Options{})
}

func ExtractWithOptions(imports, exports *Table, year int, opts Options) ([]model.FlowRecord, error) {
	column := strconv.Itoa(year)

	importFlows, err := extractTable(imports, model.FlowImports, column, opts)
	if err != nil {
		return nil, err
	}
	exportFlows, err := extractTable(exports, model.FlowExports, column, opts)
	if err != nil {
		return nil, err
	}

	flows := make([]model.FlowRecord, 0, len(importFlows)+len(exportFlows))
	flows = append(flows, importFlows...)
	flows = append(flows, exportFlows...)
	return flows, nil
}

func extractTable(table *Table, flowType model.FlowType, column string, opts Options) ([]model.FlowRecord, error) {
	if table == nil {
		return nil, &Error{Kind: KindMalformedTable, Err: errors.New("table is nil")}
	}
	values, ok := table.column(column)
	if !ok {
		return nil, &Error{
			Kind:      KindMissingColumn,
			Path:      table.path,
			Column:    column,
			Available: table.YearLabels(),
		}
	}

	results := make([]model.FlowRecord, 0, len(values))
	for i, value := range values {
		if math.IsNaN(value) {
			continue
		}
		if opts.MinValue != nil && value < *opts.MinValue {
			continue
		}
		results = append(results, model.FlowRecord{
			IndustryCode: table.metadata[i].NaceR2,
			FlowType:     flowType,
			Value:        value,
		})
	}
	return results, nil
}
