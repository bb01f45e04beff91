package flows

import "figaroflows/internal/model"

// ProcessFlows decodes both files and extracts the flows of year. It either
// returns every record or a single *Error, never both.
func ProcessFlows(importsPath, exportsPath string, year int) ([]model.FlowRecord, error) {
	return ProcessFlowsWithOptions(importsPath, exportsPath, year, Options{})
}

func ProcessFlowsWithOptions(importsPath, exportsPath string, year int, opts Options) ([]model.FlowRecord, error) {
	imports, err := Decode(importsPath)
	if err != nil {
		return nil, err
	}
	exports, err := Decode(exportsPath)
	if err != nil {
		return nil, err
	}
	return ExtractWithOptions(imports, exports, year, opts)
}
