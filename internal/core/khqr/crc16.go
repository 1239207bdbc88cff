package khqr

import "fmt"

const crcPoly = 0x1021

// CRC16 computes the CCITT-FALSE checksum of b: initial register 0xFFFF,
// polynomial 0x1021, no reflection, no final XOR.
func CRC16(b []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, octet := range b {
		crc ^= uint16(octet) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ crcPoly
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// ChecksumHex formats CRC16(b) as 4 uppercase hex digits, zero-padded.
func ChecksumHex(b []byte) string {
	return fmt.Sprintf("%04X", CRC16(b))
}
