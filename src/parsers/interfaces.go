package parsers

import (
	"io"

	"github.com/username/moneymirror/src/models"
)

// ParseResult holds the rows that parsed and a message per rejected row.
// A bad row never aborts the file.
type ParseResult struct {
	Transactions []models.Transaction
	Errors       []string
}

// Parser turns a statement export into transactions.
type Parser interface {
	Parse(file io.Reader) (*ParseResult, error)
}
