package errno

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantCategory Category
		wantSubcode  int
	}{
		{"nil is success", nil, CategoryNone, 0},
		{"errno value", ErrInvalidData, CategoryCorruptData, 2},
		{"errno pointer", &Errno{Category: CategoryWallet, Subcode: 1}, CategoryWallet, 1},
		{"plain error maps to internal", errors.New("boom"), CategoryInternal, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, subcode, _ := Decode(tt.err)
			assert.Equal(t, tt.wantCategory, category)
			assert.Equal(t, tt.wantSubcode, subcode)
		})
	}
}

func TestErrnoIsComparable(t *testing.T) {
	var err error = ErrInvalidRequest
	assert.True(t, errors.Is(err, ErrInvalidRequest))
	assert.False(t, errors.Is(err, ErrInvalidData))
}
