package wallet

import (
	"encoding/hex"
	"strings"

	"device-core/pkg/config"
	"device-core/pkg/errno"
)

// Registry resolves wallet identifiers to their on-device display names.
// The flow only ever needs the name; key material lives in the vault.
type Registry interface {
	// ResolveName 根据 wallet_id 查找钱包名称
	ResolveName(walletID []byte) (string, error)
}

type registry struct {
	names map[string]string // hex(wallet_id) -> name
}

// NewRegistry builds a registry from config entries. IDs are normalized
// to lowercase hex.
func NewRegistry(entries []config.WalletEntry) Registry {
	names := make(map[string]string, len(entries))
	for _, e := range entries {
		names[strings.ToLower(e.ID)] = e.Name
	}
	return &registry{names: names}
}

func (r *registry) ResolveName(walletID []byte) (string, error) {
	name, ok := r.names[hex.EncodeToString(walletID)]
	if !ok {
		return "", errno.ErrWalletNotFound
	}
	return name, nil
}
