package models

import "time"

// IndexFields are the plaintext copies of payload fields kept next to the
// ciphertext so that records can be filtered without decryption. The payload
// itself always carries these fields too.
type IndexFields struct {
	Category string
	Date     *time.Time
	Amount   *float64
	Kind     string
}

// Indexable payloads expose the fields the secure store indexes.
type Indexable interface {
	IndexFields() IndexFields
}
