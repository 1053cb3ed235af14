package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Wallet  WalletConfig  `mapstructure:"wallet"`
	Scanner ScannerConfig `mapstructure:"scanner"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	HttpPort string `mapstructure:"http_port"`
}

type WalletConfig struct {
	// ProviderURL is the wallet's own JSON-RPC endpoint (e.g. Frame at http://127.0.0.1:1248).
	// Empty means no provider is injected and connect attempts fail.
	ProviderURL         string        `mapstructure:"provider_url"`
	ReceiptPollInterval time.Duration `mapstructure:"receipt_poll_interval"`
	ApprovalTimeout     time.Duration `mapstructure:"approval_timeout"`
}

// ScannerConfig seeds the panel counters
type ScannerConfig struct {
	SeedScanned     int64 `mapstructure:"seed_scanned"`
	SeedCompromised int64 `mapstructure:"seed_compromised"`
	SeedSafe        int64 `mapstructure:"seed_safe"`
}

var Global Config

func Init() {
	v := viper.GetViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := Load(v, &Global); err != nil {
		log.Fatalf("Fatal error config file: %s \n", err)
	}

	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

// Load reads config through v into out. A missing config file is not an error;
// defaults and environment variables still apply.
func Load(v *viper.Viper, out *Config) error {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: Config file not found, using defaults and environment variables")
		} else {
			return err
		}
	}

	return v.Unmarshal(out)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http_port", "8080")

	v.SetDefault("wallet.provider_url", "")
	v.SetDefault("wallet.receipt_poll_interval", 2*time.Second)
	v.SetDefault("wallet.approval_timeout", 5*time.Minute)

	v.SetDefault("scanner.seed_scanned", 0)
	v.SetDefault("scanner.seed_compromised", 0)
	v.SetDefault("scanner.seed_safe", 0)
}
