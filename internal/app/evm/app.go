// Package evm implements the Ethereum-family signing application. It
// shares the phase-sequencing skeleton with the Bitcoin app but supplies
// its own context shape, validation and fee display: the host streams one
// RLP-encoded unsigned transaction instead of discrete inputs/outputs.
package evm

import (
	"context"

	"go.uber.org/zap"

	"device-core/internal/host"
	"device-core/internal/keyvault"
	"device-core/internal/ui"
	"device-core/internal/wallet"
	"device-core/pkg/config"
	"device-core/pkg/errno"
	"device-core/pkg/logger"
)

const (
	uiTextSendPrompt     = "Send %s with wallet %s?"
	uiTextReceiverTitle  = "Receiver"
	uiTextValueTitle     = "Amount"
	uiTextFeeTitle       = "Max fee"
	uiTextContractDeploy = "Contract deployment"
	uiTextResyncNotice   = "Check the companion app and retry"
)

const hardenedOffset = 0x80000000

type App struct {
	name    string
	chainID uint64

	registry wallet.Registry
	vault    *keyvault.Vault
	ui       ui.Delegate
}

func New(cfg config.EVMConfig, registry wallet.Registry, vault *keyvault.Vault, delegate ui.Delegate) *App {
	return &App{
		name:     "Ethereum",
		chainID:  uint64(cfg.ChainID),
		registry: registry,
		vault:    vault,
		ui:       delegate,
	}
}

func (a *App) ID() host.AppID {
	return host.AppEVM
}

func (a *App) Handle(ctx context.Context, q *host.Query, link host.Link) error {
	if q.EVM == nil || q.EVM.Which != host.EVMQuerySignTxn {
		err := errno.ErrInvalidRequest
		_ = link.SendError(err)
		return err
	}

	flow := newTxnFlow(a, link)
	err := flow.run(ctx, q)
	if err != nil {
		logger.Info("sign txn flow ended", zap.Error(err))
	}
	return err
}

// validatePathPolicy accepts the full five-component BIP-44 path for coin
// 60: purpose'/60'/account'/change/index with a bounded account.
func validatePathPolicy(path []uint32) bool {
	if len(path) != 5 {
		return false
	}
	purpose, coin, account, change, index := path[0], path[1], path[2], path[3], path[4]

	if purpose != hardenedOffset+44 {
		return false
	}
	if coin != hardenedOffset+60 {
		return false
	}
	if account < hardenedOffset {
		return false
	}
	if change != 0 && change != 1 {
		return false
	}
	return index < hardenedOffset
}
