package btc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePathPolicy(t *testing.T) {
	h := uint32(hardenedOffset)

	tests := []struct {
		name string
		path []uint32
		coin uint32
		want bool
	}{
		{"bip44 mainnet", []uint32{h + 44, h + 0, h + 0}, 0, true},
		{"bip49 mainnet", []uint32{h + 49, h + 0, h + 5}, 0, true},
		{"bip84 testnet", []uint32{h + 84, h + 1, h + 0}, 1, true},
		{"unknown purpose", []uint32{h + 45, h + 0, h + 0}, 0, false},
		{"wrong coin", []uint32{h + 44, h + 1, h + 0}, 0, false},
		{"unhardened purpose", []uint32{44, h + 0, h + 0}, 0, false},
		{"unhardened account", []uint32{h + 44, h + 0, 0}, 0, false},
		{"account above bound", []uint32{h + 44, h + 0, h + 101}, 0, false},
		{"too short", []uint32{h + 44, h + 0}, 0, false},
		{"too long", []uint32{h + 44, h + 0, h + 0, 0, 0}, 0, false},
		{"empty", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validatePathPolicy(tt.path, tt.coin))
		})
	}
}
