package btc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"device-core/internal/host"
)

func TestContextDestroyZeroizes(t *testing.T) {
	inputScript := []byte{0x01, 0x02, 0x03}
	outputScript := []byte{0x04, 0x05, 0x06}

	c := &txnContext{
		initInfo: host.BTCSignTxnInitiateRequest{WalletID: []byte{0xAA}},
		metadata: host.BTCSignTxnMetadata{InputCount: 1, OutputCount: 1},
		inputs:   []txnInput{{value: 1, scriptPubKey: inputScript}},
		outputs:  []host.BTCTxnOutput{{Value: 2, ScriptPubKey: outputScript}},
	}
	c.destroy()

	assert.Nil(t, c.inputs)
	assert.Nil(t, c.outputs)
	assert.Empty(t, c.initInfo.WalletID)
	assert.Zero(t, c.metadata.InputCount)
	// the shared backing arrays were wiped, not just dropped
	assert.Equal(t, []byte{0, 0, 0}, inputScript)
	assert.Equal(t, []byte{0, 0, 0}, outputScript)
}

func TestContextDestroyOnPartial(t *testing.T) {
	c := &txnContext{}
	assert.NotPanics(t, func() { c.destroy() })
}
