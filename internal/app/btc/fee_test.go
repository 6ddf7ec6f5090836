package btc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"device-core/internal/host"
)

func outputWithValue(v uint64) host.BTCTxnOutput {
	return host.BTCTxnOutput{Value: v, ScriptPubKey: p2pkhScript(0x33)}
}

func TestDefaultFeeThreshold(t *testing.T) {
	threshold := defaultFeeThreshold(250)

	tests := []struct {
		name    string
		inputs  int
		outputs int
		want    uint64
	}{
		{"1 in 2 out", 1, 2, 250 * (148 + 68 + 10)},
		{"2 in 1 out", 2, 1, 250 * (296 + 34 + 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, threshold(tt.inputs, tt.outputs, 0))
		})
	}
}

func TestFeeArithmetic(t *testing.T) {
	c := &txnContext{
		inputs:  []txnInput{{value: 60000}, {value: 40000}},
		outputs: nil,
	}
	c.outputs = append(c.outputs, outputWithValue(90000), outputWithValue(9000))

	fee, ok := c.fee()
	assert.True(t, ok)
	assert.Equal(t, uint64(1000), fee)
}

func TestFeeOverspend(t *testing.T) {
	c := &txnContext{inputs: []txnInput{{value: 50000}}}
	c.outputs = append(c.outputs, outputWithValue(60000))

	_, ok := c.fee()
	assert.False(t, ok)
}
