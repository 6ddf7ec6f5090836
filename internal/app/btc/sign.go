package btc

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// buildUnsignedTxn reconstructs the transaction being authorized from the
// bound context. Input order is the order the rounds arrived in; scripts
// stay empty, the sighash routine blanks and substitutes them per input.
func buildUnsignedTxn(c *txnContext) *wire.MsgTx {
	txn := wire.NewMsgTx(int32(c.metadata.Version))
	txn.LockTime = c.metadata.Locktime

	for i := range c.inputs {
		in := &c.inputs[i]
		prevHash, _ := chainhash.NewHash(in.prevTxnHash[:])
		outpoint := wire.NewOutPoint(prevHash, in.prevOutputIndex)
		txIn := wire.NewTxIn(outpoint, nil, nil)
		txIn.Sequence = in.sequence
		txn.AddTxIn(txIn)
	}
	for i := range c.outputs {
		out := &c.outputs[i]
		script := append([]byte(nil), out.ScriptPubKey...)
		txn.AddTxOut(wire.NewTxOut(int64(out.Value), script))
	}
	return txn
}

// signatureDigest computes the per-input SIGHASH_ALL digest: the whole
// transaction serialized with every other input's script blanked and this
// input's script set to the locking script being spent.
func signatureDigest(txn *wire.MsgTx, c *txnContext, idx int) ([]byte, error) {
	if idx < 0 || idx >= len(c.inputs) {
		return nil, fmt.Errorf("input index %d out of range", idx)
	}
	return txscript.CalcSignatureHash(c.inputs[idx].scriptPubKey, txscript.SigHashAll, txn, idx)
}

// signInput produces the deterministic DER signature for one input with
// the sighash kind byte appended, ready for script assembly host-side.
func (a *App) signInput(txn *wire.MsgTx, c *txnContext, idx int) ([]byte, error) {
	digest, err := signatureDigest(txn, c, idx)
	if err != nil {
		return nil, err
	}

	in := &c.inputs[idx]
	path := make([]uint32, 0, len(c.initInfo.DerivationPath)+2)
	path = append(path, c.initInfo.DerivationPath...)
	path = append(path, in.changeIndex, in.addressIndex)

	priv, err := a.vault.DerivePrivKey(path)
	if err != nil {
		return nil, err
	}
	defer priv.Zero()

	sig := ecdsa.Sign(priv, digest)
	return append(sig.Serialize(), byte(txscript.SigHashAll)), nil
}
