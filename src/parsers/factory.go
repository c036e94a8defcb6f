package parsers

import (
	"fmt"
)

// GetParser returns the parser for an import format. "csv" expects commas and
// "csv-fr" expects semicolons with decimal commas, as most French banks export.
func GetParser(format string) (Parser, error) {
	switch format {
	case "", "csv":
		return NewCSVParser(','), nil
	case "csv-fr":
		return NewCSVParser(';'), nil
	default:
		return nil, fmt.Errorf("no parser available for format: %s", format)
	}
}
