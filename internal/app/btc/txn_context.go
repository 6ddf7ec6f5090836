package btc

import (
	"device-core/internal/host"
)

// The single supported sighash kind ("sign everything").
const sighashAll = 0x00000001

// Locking scripts the device will copy around are bounded; anything
// longer than a P2SH push limit is not something we can spend or display.
const maxScriptPubKeyLen = 520

// txnContext is the mutable aggregate one signing flow builds up across
// rounds. It is owned by exactly one flow instance and destroyed on every
// exit path.
type txnContext struct {
	initInfo host.BTCSignTxnInitiateRequest
	metadata host.BTCSignTxnMetadata

	// allocated only after metadata is accepted, sized to the declared
	// counts
	inputs  []txnInput
	outputs []host.BTCTxnOutput
}

// txnInput is one spend being authorized. After verifyInput succeeds the
// record is bound: value and scriptPubKey come from the parsed raw
// previous transaction, not from the host's claim.
type txnInput struct {
	prevTxnHash     [32]byte
	prevOutputIndex uint32
	addressIndex    uint32
	changeIndex     uint32
	value           uint64
	sequence        uint32
	scriptPubKey    []byte
}

// destroy zeroizes everything the context accumulated and releases the
// buffers. Safe to call on a partially built context.
func (c *txnContext) destroy() {
	for i := range c.inputs {
		in := &c.inputs[i]
		for j := range in.scriptPubKey {
			in.scriptPubKey[j] = 0
		}
		*in = txnInput{}
	}
	for i := range c.outputs {
		out := &c.outputs[i]
		for j := range out.ScriptPubKey {
			out.ScriptPubKey[j] = 0
		}
		*out = host.BTCTxnOutput{}
	}
	c.inputs = nil
	c.outputs = nil
	c.initInfo = host.BTCSignTxnInitiateRequest{}
	c.metadata = host.BTCSignTxnMetadata{}
}

func (c *txnContext) totalInputValue() uint64 {
	var total uint64
	for i := range c.inputs {
		total += c.inputs[i].value
	}
	return total
}

func (c *txnContext) totalOutputValue() uint64 {
	var total uint64
	for i := range c.outputs {
		total += c.outputs[i].Value
	}
	return total
}

// fee returns sum(inputs) - sum(outputs). ok is false when the outputs
// overspend the inputs.
func (c *txnContext) fee() (uint64, bool) {
	in := c.totalInputValue()
	out := c.totalOutputValue()
	if out > in {
		return 0, false
	}
	return in - out, true
}
