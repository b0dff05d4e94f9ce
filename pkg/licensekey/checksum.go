package licensekey

const (
	checksumLeftInit  = 0x56
	checksumRightInit = 0xAF
	checksumModulus   = 0xFF
)

// Checksum computes the 2-byte integrity value of data. The result is
// big-endian: the high byte is the running "left" sum and the low byte the
// running "right" sum.
//
// Both sums are reduced by subtracting 255 rather than 256. Keys issued in the
// wild depend on this exact reduction, so it must not be changed to a textbook
// Fletcher-16.
func Checksum(data []byte) [ChecksumSize]byte {
	left := uint16(checksumLeftInit)
	right := uint16(checksumRightInit)

	for _, b := range data {
		right += uint16(b)
		if right > checksumModulus {
			right -= checksumModulus
		}
		left += right
		if left > checksumModulus {
			left -= checksumModulus
		}
	}

	return [ChecksumSize]byte{byte(left), byte(right)}
}
