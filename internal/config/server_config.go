package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"github/chapool/ledger-login/internal/util"
)

// EnvPrefix prefixes every environment variable read by the service.
const EnvPrefix = "LEDGER"

// ErrLedgerRequiresEVM is returned for a Ledger device on a network whose
// addresses the Ethereum app cannot render.
var ErrLedgerRequiresEVM = errors.New("ledger device only derives EVM addresses")

// Device kinds.
const (
	DeviceKindLedger   = "ledger"
	DeviceKindEmulated = "emulated"
)

type LoggerServer struct {
	Level              string `mapstructure:"level"`
	RequestLevel       string `mapstructure:"request_level"`
	PrettyPrintConsole bool   `mapstructure:"pretty_print_console"`
	Caller             bool   `mapstructure:"caller"`
}

// ZerologLevel parses Level, defaulting to info.
func (l LoggerServer) ZerologLevel() zerolog.Level {
	return parseLevel(l.Level, zerolog.InfoLevel)
}

// ZerologRequestLevel parses RequestLevel, defaulting to debug.
func (l LoggerServer) ZerologRequestLevel() zerolog.Level {
	return parseLevel(l.RequestLevel, zerolog.DebugLevel)
}

type EchoServer struct {
	Debug                          bool          `mapstructure:"debug"`
	ListenAddress                  string        `mapstructure:"listen_address"`
	HideInternalServerErrorDetails bool          `mapstructure:"hide_internal_server_error_details"`
	EnableCORSMiddleware           bool          `mapstructure:"enable_cors_middleware"`
	AllowOrigins                   []string      `mapstructure:"allow_origins"`
	EnableRecoverMiddleware        bool          `mapstructure:"enable_recover_middleware"`
	EnableRequestIDMiddleware      bool          `mapstructure:"enable_request_id_middleware"`
	EnableLoggerMiddleware         bool          `mapstructure:"enable_logger_middleware"`
	ShutdownTimeout                time.Duration `mapstructure:"shutdown_timeout"`
}

type ManagementServer struct {
	EnableMetrics bool `mapstructure:"enable_metrics"`
}

// Network selects the chain and node the balances are read from.
type Network struct {
	Name           string        `mapstructure:"name"`
	Kind           string        `mapstructure:"kind"` // NetworkKindEVM or NetworkKindICON
	ID             int64         `mapstructure:"id"`   // EVM chain id or ICON nid
	RPCURLs        []string      `mapstructure:"rpc_urls"`
	Decimals       uint8         `mapstructure:"decimals"`
	DerivationBase string        `mapstructure:"derivation_base"`
	HardenedLeaf   bool          `mapstructure:"hardened_leaf"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Device selects the hardware signer.
type Device struct {
	Kind             string        `mapstructure:"kind"` // DeviceKindLedger or DeviceKindEmulated
	SessionTimeout   time.Duration `mapstructure:"session_timeout"`
	EmulatorKeystore string        `mapstructure:"emulator_keystore"`
	EmulatorPassword string        `mapstructure:"emulator_password" json:"-"`
	EmulatorMnemonic string        `mapstructure:"emulator_mnemonic" json:"-"`
}

type I18n struct {
	DefaultLanguage string `mapstructure:"default_language"`
}

type Notifications struct {
	Capacity int `mapstructure:"capacity"`
}

type Server struct {
	Logger        LoggerServer     `mapstructure:"logger"`
	Echo          EchoServer       `mapstructure:"echo"`
	Management    ManagementServer `mapstructure:"management"`
	Network       Network          `mapstructure:"network"`
	Device        Device           `mapstructure:"device"`
	I18n          I18n             `mapstructure:"i18n"`
	Notifications Notifications    `mapstructure:"notifications"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.request_level", "debug")
	v.SetDefault("logger.pretty_print_console", false)
	v.SetDefault("logger.caller", false)

	v.SetDefault("echo.debug", false)
	v.SetDefault("echo.listen_address", ":8080")
	v.SetDefault("echo.hide_internal_server_error_details", true)
	v.SetDefault("echo.enable_cors_middleware", true)
	v.SetDefault("echo.allow_origins", []string{"*"})
	v.SetDefault("echo.enable_recover_middleware", true)
	v.SetDefault("echo.enable_request_id_middleware", true)
	v.SetDefault("echo.enable_logger_middleware", true)
	v.SetDefault("echo.shutdown_timeout", 10*time.Second)

	v.SetDefault("management.enable_metrics", true)

	v.SetDefault("network.name", NetworkICONMainnet)
	v.SetDefault("network.request_timeout", 10*time.Second)

	v.SetDefault("device.kind", DeviceKindLedger)
	v.SetDefault("device.session_timeout", 30*time.Second)
	v.SetDefault("device.emulator_keystore", "")
	v.SetDefault("device.emulator_password", "")
	v.SetDefault("device.emulator_mnemonic", "")

	v.SetDefault("i18n.default_language", "en")

	v.SetDefault("notifications.capacity", 50)

	// preset overrides, only applied when explicitly set
	for _, key := range []string{
		"network.kind",
		"network.id",
		"network.rpc_urls",
		"network.decimals",
		"network.derivation_base",
		"network.hardened_leaf",
	} {
		_ = v.BindEnv(key)
	}
}

// NewViper returns a viper instance reading LEDGER_* environment variables
// (e.g. LEDGER_NETWORK_RPC_URLS for network.rpc_urls).
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return v
}

// Load reads the configuration from v and applies the selected network preset.
func Load(v *viper.Viper) (Server, error) {
	var cfg Server
	if err := v.Unmarshal(&cfg); err != nil {
		return Server{}, errors.Wrap(err, "failed to unmarshal config")
	}

	// env values arrive as a single comma separated string
	if raw := v.GetString("network.rpc_urls"); raw != "" {
		cfg.Network.RPCURLs = util.SplitCSV(raw)
	}

	if err := cfg.Network.applyPreset(v.IsSet("network.hardened_leaf")); err != nil {
		return Server{}, err
	}

	return cfg, nil
}

// DefaultServiceConfigFromEnv returns the server config as parsed from environment variables
// and their respective defaults. A .env file in the working directory is loaded first if present.
func DefaultServiceConfigFromEnv() Server {
	// An absent .env file is the regular case outside local development.
	_ = gotenv.Load()

	cfg, err := Load(NewViper())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load service config")
	}

	return cfg
}

// Validate checks the settings the service cannot start without.
func (c Server) Validate() error {
	if len(c.Network.RPCURLs) == 0 {
		return errors.Errorf("network %q has no RPC URLs configured (set %s_NETWORK_RPC_URLS)", c.Network.Name, EnvPrefix)
	}

	switch c.Network.Kind {
	case NetworkKindEVM, NetworkKindICON:
	default:
		return errors.Errorf("unsupported network kind %q", c.Network.Kind)
	}

	switch c.Device.Kind {
	case DeviceKindLedger:
		if c.Network.Kind != NetworkKindEVM {
			return errors.Wrapf(ErrLedgerRequiresEVM, "network %q is %s (set %s_DEVICE_KIND=%s)", c.Network.Name, c.Network.Kind, EnvPrefix, DeviceKindEmulated)
		}
	case DeviceKindEmulated:
		if c.Device.EmulatorKeystore == "" && c.Device.EmulatorMnemonic == "" {
			return errors.New("emulated device requires a keystore file or a mnemonic")
		}
	default:
		return errors.Errorf("unsupported device kind %q", c.Device.Kind)
	}

	return nil
}

func parseLevel(value string, fallback zerolog.Level) zerolog.Level {
	if value == "" {
		return fallback
	}

	level, err := zerolog.ParseLevel(value)
	if err != nil {
		return fallback
	}

	return level
}
