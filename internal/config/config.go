// Package config loads the daemon configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightninglabs/lndclient"
	"github.com/spf13/viper"
)

type Config struct {
	Datadir  string
	Port     uint32
	LogLevel int

	// PublicURL is the externally reachable base URL of the deployment.
	// LNURL callbacks and lightning addresses are built against it; when
	// empty the request host is used.
	PublicURL    string
	PublicScheme string
	PublicHost   string
	PathBase     string

	Network     lndclient.Network
	ChainParams *chaincfg.Params

	LndAddress     string
	LndMacaroonDir string
	LndTLSPath     string

	AdminToken      string
	DefaultAppID    string
	DefaultCurrency string
	ReceiptsEnabled bool
	InvoiceExpiry   time.Duration

	DbDir string
}

var (
	Datadir         = "DATADIR"
	Port            = "PORT"
	LogLevel        = "LOG_LEVEL"
	PublicURL       = "PUBLIC_URL"
	Network         = "NETWORK"
	LndAddress      = "LND_ADDRESS"
	LndMacaroonDir  = "LND_MACAROON_DIR"
	LndTLSPath      = "LND_TLS_PATH"
	AdminToken      = "ADMIN_TOKEN"
	DefaultAppID    = "DEFAULT_APP_ID"
	DefaultCurrency = "DEFAULT_CURRENCY"
	ReceiptsEnabled = "RECEIPTS_ENABLED"
	InvoiceExpiry   = "INVOICE_EXPIRY"

	defaultDatadir         = btcutil.AppDataDir("shoutout", false)
	defaultPort            = uint32(9735)
	defaultLogLevel        = 4
	defaultNetwork         = "regtest"
	defaultLndAddress      = "localhost:10009"
	defaultCurrency        = "SATS"
	defaultReceiptsEnabled = true
	defaultInvoiceExpiry   = 10 * time.Minute
)

func LoadConfig() (*Config, error) {
	viper.SetEnvPrefix("SHOUTOUT")
	viper.AutomaticEnv()

	viper.SetDefault(Datadir, defaultDatadir)
	viper.SetDefault(Port, defaultPort)
	viper.SetDefault(LogLevel, defaultLogLevel)
	viper.SetDefault(Network, defaultNetwork)
	viper.SetDefault(LndAddress, defaultLndAddress)
	viper.SetDefault(DefaultCurrency, defaultCurrency)
	viper.SetDefault(ReceiptsEnabled, defaultReceiptsEnabled)
	viper.SetDefault(InvoiceExpiry, defaultInvoiceExpiry)

	if err := initDatadir(); err != nil {
		return nil, fmt.Errorf("error while creating datadir: %s", err)
	}

	network, chainParams, err := parseNetwork(viper.GetString(Network))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Datadir:         viper.GetString(Datadir),
		Port:            viper.GetUint32(Port),
		LogLevel:        viper.GetInt(LogLevel),
		PublicURL:       viper.GetString(PublicURL),
		Network:         network,
		ChainParams:     chainParams,
		LndAddress:      viper.GetString(LndAddress),
		LndMacaroonDir:  viper.GetString(LndMacaroonDir),
		LndTLSPath:      viper.GetString(LndTLSPath),
		AdminToken:      viper.GetString(AdminToken),
		DefaultAppID:    viper.GetString(DefaultAppID),
		DefaultCurrency: strings.ToUpper(viper.GetString(DefaultCurrency)),
		ReceiptsEnabled: viper.GetBool(ReceiptsEnabled),
		InvoiceExpiry:   viper.GetDuration(InvoiceExpiry),
		DbDir:           filepath.Join(viper.GetString(Datadir), "db"),
	}

	if cfg.PublicURL != "" {
		parsed, err := url.Parse(cfg.PublicURL)
		if err != nil || parsed.Host == "" {
			return nil, fmt.Errorf("invalid public URL %q", cfg.PublicURL)
		}
		cfg.PublicScheme = parsed.Scheme
		cfg.PublicHost = parsed.Host
		cfg.PathBase = strings.TrimSuffix(parsed.Path, "/")
	}

	return cfg, nil
}

func parseNetwork(name string) (lndclient.Network, *chaincfg.Params, error) {
	switch name {
	case "mainnet":
		return lndclient.NetworkMainnet, &chaincfg.MainNetParams, nil
	case "testnet":
		return lndclient.NetworkTestnet, &chaincfg.TestNet3Params, nil
	case "regtest":
		return lndclient.NetworkRegtest, &chaincfg.RegressionNetParams, nil
	case "simnet":
		return lndclient.NetworkSimnet, &chaincfg.SimNetParams, nil
	default:
		return "", nil, fmt.Errorf("unknown network %q", name)
	}
}

func initDatadir() error {
	datadir := viper.GetString(Datadir)
	if err := makeDirectoryIfNotExists(datadir); err != nil {
		return err
	}
	return makeDirectoryIfNotExists(filepath.Join(datadir, "db"))
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
