package licensekey

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected [2]byte
	}{
		{"empty input returns seeds", "", [2]byte{0x56, 0xAF}},
		{"single zero byte", "00", [2]byte{0x06, 0xAF}},
		{"0xFF reduces by 255 not 256", "ff", [2]byte{0x06, 0xAF}},
		{"right sum wraps", "58", [2]byte{0x5E, 0x08}},
		{"issued key prefix", "112210f4b2d230a229552341", [2]byte{0xE7, 0x23}},
		{"test scenario prefix", "0000000000003039b2ceb8da", [2]byte{0x55, 0x2E}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := hex.DecodeString(tt.input)
			if err != nil {
				t.Fatalf("bad fixture: %v", err)
			}
			assert.Equal(t, tt.expected, Checksum(data))
		})
	}
}

func TestChecksumIsOrderSensitive(t *testing.T) {
	a := Checksum([]byte{1, 2, 3})
	b := Checksum([]byte{3, 2, 1})
	assert.NotEqual(t, a, b)
}

func TestChecksumIsDeterministic(t *testing.T) {
	data := []byte("the same bytes every time")
	assert.Equal(t, Checksum(data), Checksum(data))
}
