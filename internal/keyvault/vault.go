package keyvault

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

// Vault holds the unlocked device master key and derives per-input
// signing keys. Path components arrive from the flows with the hardened
// bit already set where applicable; the vault applies them verbatim.
type Vault struct {
	master  *hdkeychain.ExtendedKey
	network *chaincfg.Params
}

var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// NewVaultFromMnemonic 从助记词恢复设备主密钥
func NewVaultFromMnemonic(mnemonic, passphrase string, network *chaincfg.Params) (*Vault, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	if network == nil {
		network = &chaincfg.MainNetParams
	}

	seed := bip39.NewSeed(mnemonic, passphrase)
	master, err := hdkeychain.NewMaster(seed, network)
	if err != nil {
		return nil, fmt.Errorf("derive master key: %w", err)
	}
	return &Vault{master: master, network: network}, nil
}

// derive walks the raw path components from the master key.
func (v *Vault) derive(path []uint32) (*hdkeychain.ExtendedKey, error) {
	key := v.master
	for _, component := range path {
		child, err := key.Derive(component)
		if err != nil {
			return nil, fmt.Errorf("derive component %#x: %w", component, err)
		}
		key = child
	}
	return key, nil
}

// DerivePrivKey returns the EC private key at the given path.
func (v *Vault) DerivePrivKey(path []uint32) (*btcec.PrivateKey, error) {
	key, err := v.derive(path)
	if err != nil {
		return nil, err
	}
	return key.ECPrivKey()
}

// DeriveXpub returns the serialized extended public key at the given
// path, for the get-public-keys flow.
func (v *Vault) DeriveXpub(path []uint32) (string, error) {
	key, err := v.derive(path)
	if err != nil {
		return "", err
	}
	neutered, err := key.Neuter()
	if err != nil {
		return "", err
	}
	return neutered.String(), nil
}

// SignRecoverable signs a 32-byte digest and returns the 65-byte
// [R || S || V] signature used by the Ethereum-family flow.
func (v *Vault) SignRecoverable(path []uint32, digest []byte) ([]byte, error) {
	if len(digest) != 32 {
		return nil, fmt.Errorf("digest must be 32 bytes, got %d", len(digest))
	}
	priv, err := v.DerivePrivKey(path)
	if err != nil {
		return nil, err
	}
	return ethcrypto.Sign(digest, priv.ToECDSA())
}
