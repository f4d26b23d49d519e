package pattern

import (
	"fmt"
	"os"
)

// LoadFile reads and validates the pattern document at path.
func LoadFile(path string) (*Tree, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern %s: %w", path, err)
	}
	return Validate(raw)
}
