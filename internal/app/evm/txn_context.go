package evm

import (
	"github.com/ethereum/go-ethereum/core/types"

	"device-core/internal/host"
)

// Hard cap on the unsigned transaction buffer. The declared size is
// validated against it before any chunk is accepted.
const transactionSizeCap = 20480

// txnContext mirrors the Bitcoin flow's aggregate for the EVM family:
// initiate info, the raw unsigned transaction accumulated from chunks,
// and its decoded form.
type txnContext struct {
	initInfo host.EVMSignTxnInitiateRequest

	transaction []byte // raw RLP, allocated to the declared size
	received    uint32

	decoded *types.Transaction
}

func (c *txnContext) destroy() {
	for i := range c.transaction {
		c.transaction[i] = 0
	}
	c.transaction = nil
	c.decoded = nil
	c.initInfo = host.EVMSignTxnInitiateRequest{}
	c.received = 0
}
