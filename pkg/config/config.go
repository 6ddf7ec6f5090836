package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Link   LinkConfig   `mapstructure:"link"`
	Vault  VaultConfig  `mapstructure:"vault"`
	BTC    BTCConfig    `mapstructure:"btc"`
	EVM    EVMConfig    `mapstructure:"evm"`
	Wallet WalletConfig `mapstructure:"wallet"`
}

type AppConfig struct {
	Env       string `mapstructure:"env"`
	DebugPort string `mapstructure:"debug_port"` // gin debug/metrics server, empty disables it
}

type LinkConfig struct {
	ListenAddr string `mapstructure:"listen_addr"` // host companion app connects here
}

type VaultConfig struct {
	KeystorePath string `mapstructure:"keystore_path"` // scrypt-encrypted seed file
	Password     string `mapstructure:"password"`      // usually injected via VAULT_PASSWORD env
}

type BTCConfig struct {
	Network        string `mapstructure:"network"`          // mainnet or testnet3
	MaxInputCount  uint32 `mapstructure:"max_input_count"`  // hard cap on host-declared counts
	MaxOutputCount uint32 `mapstructure:"max_output_count"`
	MaxFeeRate     uint64 `mapstructure:"max_fee_rate"` // sat/vB used by the default fee ceiling policy
}

type EVMConfig struct {
	ChainID int64 `mapstructure:"chain_id"`
}

// WalletConfig seeds the on-device wallet registry. A real device reads
// this from secure storage; the emulator takes it from config.
type WalletConfig struct {
	Wallets []WalletEntry `mapstructure:"wallets"`
}

type WalletEntry struct {
	ID   string `mapstructure:"id"` // hex-encoded 32-byte wallet identifier
	Name string `mapstructure:"name"`
}

var Global Config

func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: Config file not found, using defaults and environment variables")
		} else {
			log.Fatalf("Fatal error config file: %s \n", err)
		}
	}

	if err := viper.Unmarshal(&Global); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug_port", "8330")

	viper.SetDefault("link.listen_addr", "127.0.0.1:8329")

	viper.SetDefault("vault.keystore_path", "device-seed.json")

	viper.SetDefault("btc.network", "mainnet")
	viper.SetDefault("btc.max_input_count", 100)
	viper.SetDefault("btc.max_output_count", 100)
	viper.SetDefault("btc.max_fee_rate", 250)

	viper.SetDefault("evm.chain_id", 1)
}
