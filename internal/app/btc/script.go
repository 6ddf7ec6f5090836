package btc

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

// isDataCarrier reports whether a locking script is an OP_RETURN script.
// Value locked behind one is provably unspendable.
func isDataCarrier(script []byte) bool {
	return len(script) > 0 && script[0] == txscript.OP_RETURN
}

// renderAddress formats a locking script for the device screen. Standard
// address scripts render as their encoded address; data-carrier scripts
// render as a hex preview of the payload; anything else is not something
// the user can meaningfully verify and is rejected.
func renderAddress(script []byte, params *chaincfg.Params) (string, error) {
	if isDataCarrier(script) {
		payload := script[1:]
		if len(payload) > 0 && payload[0] <= txscript.OP_PUSHDATA4 {
			// skip the push opcode for small pushes
			payload = payload[1:]
		}
		return fmt.Sprintf("data: %s", hex.EncodeToString(payload)), nil
	}

	class, addrs, _, err := txscript.ExtractPkScriptAddrs(script, params)
	if err != nil {
		return "", err
	}
	if len(addrs) != 1 || class == txscript.NonStandardTy {
		return "", fmt.Errorf("unsupported script type %s", class)
	}
	return addrs[0].EncodeAddress(), nil
}

// formatValue renders a satoshi amount as a BTC string, e.g. "0.0009 BTC".
func formatValue(sat uint64) string {
	return btcutil.Amount(sat).String()
}
