package khqr_test

import (
	"math/rand"
	"testing"

	"github.com/soktep/khqrpay/internal/core/khqr"
	"github.com/stretchr/testify/assert"
)

func TestCRC16_CheckValue(t *testing.T) {
	// Standard CCITT-FALSE check value.
	assert.Equal(t, uint16(0x29B1), khqr.CRC16([]byte("123456789")))
	assert.Equal(t, "29B1", khqr.ChecksumHex([]byte("123456789")))
}

func TestCRC16_EmptyInput(t *testing.T) {
	assert.Equal(t, uint16(0xFFFF), khqr.CRC16(nil))
	assert.Equal(t, "FFFF", khqr.ChecksumHex([]byte{}))
}

func TestCRC16_Deterministic(t *testing.T) {
	input := []byte("00020101021229190015khqr@bakong6304")
	first := khqr.CRC16(input)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, khqr.CRC16(input))
	}
}

func TestCRC16_MutationChangesChecksum(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	base := make([]byte, 64)
	rnd.Read(base)
	want := khqr.CRC16(base)

	// Any single-byte corruption is within the 16-bit burst detection
	// guarantee, so the checksum must always change.
	for i := 0; i < 500; i++ {
		mutated := make([]byte, len(base))
		copy(mutated, base)

		pos := rnd.Intn(len(mutated))
		var flip byte
		for flip == 0 {
			flip = byte(rnd.Intn(256))
		}
		mutated[pos] ^= flip

		assert.NotEqual(t, want, khqr.CRC16(mutated),
			"mutation at %d with %02X went undetected", pos, flip)
	}
}
