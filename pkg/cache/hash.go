package cache

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Hash returns the 64-bit xxHash of data as 16 lowercase hex digits.
// It only names cache files; it is not collision resistant.
func Hash(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}
