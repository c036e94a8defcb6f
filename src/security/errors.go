package security

import (
	"errors"
	"fmt"
)

var (
	ErrEncryption = errors.New("encryption error")
	ErrDecryption = errors.New("decryption error")

	// ErrKeyNotInitialized is returned by every crypto operation before
	// InitializeKey succeeds or after ClearKeys.
	ErrKeyNotInitialized = fmt.Errorf("%w: key not initialized", ErrEncryption)
)
