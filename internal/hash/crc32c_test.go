package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC32C(t *testing.T) {
	// Check value from RFC 3720, B.4.
	assert.Equal(t, uint32(0xe3069283), CRC32C([]byte("123456789")))

	h := NewCRC32C()
	_, _ = h.Write([]byte("12345"))
	_, _ = h.Write([]byte("6789"))
	assert.Equal(t, CRC32C([]byte("123456789")), h.Sum32())
}
