// Package btc implements the Bitcoin-family signing application: the
// multi-round host exchange that collects a candidate transaction,
// validates every piece against the untrusted host, takes explicit user
// approval and signs each input.
package btc

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg"
	"go.uber.org/zap"

	"device-core/internal/host"
	"device-core/internal/keyvault"
	"device-core/internal/ui"
	"device-core/internal/wallet"
	"device-core/pkg/config"
	"device-core/pkg/errno"
	"device-core/pkg/logger"
)

// On-device text
const (
	uiTextSendPrompt    = "Send %s with wallet %s?"
	uiTextReceiverTitle = "Receiver #%d"
	uiTextFeeTitle      = "Transaction fee"
	uiTextFeeTooHigh    = "Warning: transaction fee is unusually high. Continue?"
	uiTextResyncNotice  = "Check the companion app and retry"
	uiTextXpubPrompt    = "Share public keys of wallet %s?"
)

type App struct {
	name      string
	params    *chaincfg.Params
	coinIndex uint32

	registry wallet.Registry
	vault    *keyvault.Vault
	ui       ui.Delegate

	feeThreshold   FeeThresholdFunc
	maxInputCount  uint32
	maxOutputCount uint32
}

// New wires the Bitcoin app from config and its collaborators. The fee
// threshold defaults to the rate-times-size policy; tests swap it.
func New(cfg config.BTCConfig, registry wallet.Registry, vault *keyvault.Vault, delegate ui.Delegate) *App {
	params := &chaincfg.MainNetParams
	coinIndex := uint32(0)
	if cfg.Network == "testnet3" {
		params = &chaincfg.TestNet3Params
		coinIndex = 1
	}

	return &App{
		name:           "Bitcoin",
		params:         params,
		coinIndex:      coinIndex,
		registry:       registry,
		vault:          vault,
		ui:             delegate,
		feeThreshold:   defaultFeeThreshold(cfg.MaxFeeRate),
		maxInputCount:  cfg.MaxInputCount,
		maxOutputCount: cfg.MaxOutputCount,
	}
}

// SetFeeThreshold swaps the fee ceiling policy.
func (a *App) SetFeeThreshold(fn FeeThresholdFunc) {
	a.feeThreshold = fn
}

func (a *App) ID() host.AppID {
	return host.AppBTC
}

// Handle dispatches the first query of a session to the matching flow.
func (a *App) Handle(ctx context.Context, q *host.Query, link host.Link) error {
	if q.BTC == nil {
		err := errno.ErrInvalidRequest
		_ = link.SendError(err)
		return err
	}

	switch q.BTC.Which {
	case host.BTCQuerySignTxn:
		flow := newTxnFlow(a, link)
		err := flow.run(ctx, q)
		if err != nil {
			logger.Info("sign txn flow ended", zap.Error(err))
		}
		return err
	case host.BTCQueryGetPublicKeys:
		return a.getPublicKeys(q, link)
	default:
		err := errno.ErrInvalidRequest
		_ = link.SendError(err)
		return err
	}
}
