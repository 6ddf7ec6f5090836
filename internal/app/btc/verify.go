package btc

import (
	"bytes"
	"errors"

	"github.com/btcsuite/btcd/wire"

	"device-core/internal/host"
	"device-core/pkg/crypto_util"
)

var (
	errHashMismatch    = errors.New("previous transaction hash mismatch")
	errIndexOutOfRange = errors.New("claimed output index out of range")
	errValueMismatch   = errors.New("claimed value does not match previous output")
	errScriptTooLong   = errors.New("previous output script exceeds bound")
)

// verifyInput binds one claimed input to the host-supplied raw previous
// transaction. The sole proof of legitimacy is that the double SHA-256 of
// the entire raw byte string equals the claimed 32-byte hash; on match,
// the bound record takes its value and locking script from the parsed
// output, never from the claim. The claimed value must still agree, so a
// host lying about what it is spending fails here instead of at fee time.
func verifyInput(claim *host.BTCSignTxnInputRequest, bound *txnInput) error {
	if len(claim.PrevTxnHash) != 32 {
		return errHashMismatch
	}

	computed := crypto_util.DoubleSHA256(claim.PrevTxn)
	if !bytes.Equal(computed[:], claim.PrevTxnHash) {
		return errHashMismatch
	}

	var prev wire.MsgTx
	if err := prev.Deserialize(bytes.NewReader(claim.PrevTxn)); err != nil {
		return err
	}
	if claim.PrevOutputIndex >= uint32(len(prev.TxOut)) {
		return errIndexOutOfRange
	}

	out := prev.TxOut[claim.PrevOutputIndex]
	if out.Value < 0 || uint64(out.Value) != claim.Value {
		return errValueMismatch
	}
	if len(out.PkScript) > maxScriptPubKeyLen {
		return errScriptTooLong
	}

	copy(bound.prevTxnHash[:], claim.PrevTxnHash)
	bound.prevOutputIndex = claim.PrevOutputIndex
	bound.addressIndex = claim.AddressIndex
	bound.changeIndex = claim.ChangeIndex
	bound.sequence = claim.Sequence
	bound.value = uint64(out.Value)
	bound.scriptPubKey = append([]byte(nil), out.PkScript...)
	return nil
}
