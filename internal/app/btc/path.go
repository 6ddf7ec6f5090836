package btc

const hardenedOffset = 0x80000000

// Highest account index the device will derive for. Keeps a compromised
// host from walking the whole hardened space.
const maxAccountIndex = 100

// Purposes the device can spend for: BIP-44 (P2PKH), BIP-49 (nested
// segwit), BIP-84 (native segwit).
var allowedPurposes = map[uint32]bool{
	hardenedOffset + 44: true,
	hardenedOffset + 49: true,
	hardenedOffset + 84: true,
}

// validatePathPolicy checks an account-level derivation path against
// device policy: exactly purpose'/coin'/account', known purpose, the
// coin index of the active network, and a bounded hardened account.
// Pure function, no side effects.
func validatePathPolicy(path []uint32, coinIndex uint32) bool {
	if len(path) != 3 {
		return false
	}
	purpose, coin, account := path[0], path[1], path[2]

	if !allowedPurposes[purpose] {
		return false
	}
	if coin != hardenedOffset+coinIndex {
		return false
	}
	if account < hardenedOffset || account > hardenedOffset+maxAccountIndex {
		return false
	}
	return true
}
