package models

import "errors"

// ErrValidation marks malformed input that reached the core despite the ingestion contract.
var ErrValidation = errors.New("validation error")
