package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"device-core/internal/app/btc"
	"device-core/internal/app/evm"
	"device-core/internal/engine"
	"device-core/internal/keyvault"
	"device-core/internal/server"
	"device-core/internal/status"
	"device-core/internal/ui"
	"device-core/internal/wallet"
	"device-core/pkg/config"
	"device-core/pkg/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the device core",
	Run: func(cmd *cobra.Command, args []string) {
		config.Init()
		logger.Init(config.Global.App.Env)
		defer logger.Sync()
		status.Init()

		vault, err := unlockVault()
		if err != nil {
			logger.Fatal("unlocking device seed failed", zap.Error(err))
		}

		registry := wallet.NewRegistry(config.Global.Wallet.Wallets)
		delegate := ui.NewTerminal(os.Stdin, os.Stdout)

		eng := engine.New(
			btc.New(config.Global.BTC, registry, vault, delegate),
			evm.New(config.Global.EVM, registry, vault, delegate),
		)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if port := config.Global.App.DebugPort; port != "" {
			router := server.NewRouter(config.Global.App.Env)
			go func() {
				if err := router.Run(":" + port); err != nil {
					logger.Error("debug server stopped", zap.Error(err))
				}
			}()
		}

		if err := eng.ListenAndServe(ctx, config.Global.Link.ListenAddr); err != nil && ctx.Err() == nil {
			logger.Fatal("host link failed", zap.Error(err))
		}
		logger.Info("device core stopped")
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func unlockVault() (*keyvault.Vault, error) {
	key, err := keyvault.LoadFromFile(config.Global.Vault.KeystorePath)
	if err != nil {
		return nil, fmt.Errorf("load keystore: %w", err)
	}

	password := config.Global.Vault.Password
	if password == "" {
		fmt.Print("Keystore password: ")
		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return nil, err
		}
		fmt.Println()
		password = string(bytePassword)
	}

	mnemonic, err := keyvault.DecryptMnemonic(key, password)
	if err != nil {
		return nil, err
	}

	network := &chaincfg.MainNetParams
	if config.Global.BTC.Network == "testnet3" {
		network = &chaincfg.TestNet3Params
	}
	return keyvault.NewVaultFromMnemonic(mnemonic, "", network)
}
