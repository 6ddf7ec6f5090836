package btc

import (
	"fmt"

	"device-core/internal/host"
	"device-core/pkg/errno"
)

// getPublicKeys answers a single-round request for extended public keys.
// Same gate order as signing: path policy, wallet resolution, then user
// consent before anything leaves the device.
func (a *App) getPublicKeys(q *host.Query, link host.Link) error {
	abort := func(e errno.Errno) error {
		_ = link.SendError(e)
		return e
	}

	req := q.BTC.GetPublicKeys
	if req == nil || len(req.WalletID) != 32 || len(req.DerivationPaths) == 0 {
		return abort(errno.ErrInvalidData)
	}
	for _, path := range req.DerivationPaths {
		if !validatePathPolicy(path, a.coinIndex) {
			return abort(errno.ErrInvalidData)
		}
	}

	walletName, err := a.registry.ResolveName(req.WalletID)
	if err != nil {
		if e, ok := err.(errno.Errno); ok {
			return abort(e)
		}
		return abort(errno.Internal)
	}

	accepted, err := a.ui.Confirm(fmt.Sprintf(uiTextXpubPrompt, walletName))
	if err != nil {
		return err
	}
	if !accepted {
		a.ui.ShowNotice(uiTextResyncNotice)
		return errUserRejected
	}

	xpubs := make([]string, 0, len(req.DerivationPaths))
	for _, path := range req.DerivationPaths {
		xpub, err := a.vault.DeriveXpub(path)
		if err != nil {
			return abort(errno.Internal)
		}
		xpubs = append(xpubs, xpub)
	}

	return link.SendResult(&host.Result{
		App: host.AppBTC,
		BTC: &host.BTCResult{
			Which:         host.BTCResultGetPublicKeys,
			GetPublicKeys: &host.BTCGetPublicKeysResponse{PublicKeys: xpubs},
		},
	})
}
