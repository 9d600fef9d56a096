package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/teemow/larkdocs/internal/lark"
	"github.com/teemow/larkdocs/internal/server"
	"github.com/teemow/larkdocs/internal/tools/docx_tools"
)

// envPrefix prefixes every environment variable read by viper.
const envPrefix = "LARKDOCS"

const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// Config keys. Flags carry the same names.
const (
	keyAppID           = "app-id"
	keyAppSecret       = "app-secret"
	keyDomain          = "domain"
	keyUserAccessToken = "user-access-token"
	keyTransport       = "transport"
	keyHTTPAddr        = "http-addr"
	keyTools           = "tools"
	keyLanguage        = "language"
	keyTimeout         = "timeout"
	keyDebug           = "debug"
	keyMetricsEnabled  = "metrics-enabled"
	keyMetricsAddr     = "metrics-addr"
)

// legacyEnv lists unprefixed variables accepted as fallbacks.
var legacyEnv = map[string]string{
	keyAppID:           "APP_ID",
	keyAppSecret:       "APP_SECRET",
	keyUserAccessToken: "USER_ACCESS_TOKEN",
	keyMetricsEnabled:  "METRICS_ENABLED",
	keyMetricsAddr:     "METRICS_ADDR",
}

// Config is the resolved serve configuration.
type Config struct {
	AppID     string
	AppSecret string
	Domain    string

	// UserAccessToken is used for stdio; HTTP requests carry their own
	UserAccessToken string

	Transport string
	HTTPAddr  string
	Tools     []string
	Language  docx_tools.Language
	Timeout   time.Duration
	Debug     bool

	MetricsEnabled bool
	MetricsAddr    string
}

// newViper returns a viper instance reading LARKDOCS_* variables and the
// legacy fallbacks. configFile is optional.
func newViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}
	return v, nil
}

// addServeFlags registers the serve settings on flags.
func addServeFlags(flags *pflag.FlagSet) {
	flags.String(keyAppID, "", "Lark/Feishu app ID. Can also use LARKDOCS_APP_ID or APP_ID env var.")
	flags.String(keyAppSecret, "", "Lark/Feishu app secret. Can also use LARKDOCS_APP_SECRET or APP_SECRET env var.")
	flags.String(keyDomain, lark.DomainFeishu, "Open platform domain: feishu, lark, or a base URL")
	flags.String(keyUserAccessToken, "", "User access token for stdio transport. Can also use LARKDOCS_USER_ACCESS_TOKEN or USER_ACCESS_TOKEN env var.")
	flags.String(keyTransport, TransportStdio, "Transport type: stdio or streamable-http")
	flags.String(keyHTTPAddr, server.DefaultHTTPAddr, "HTTP server address (for streamable-http transport)")
	flags.StringSlice(keyTools, nil, "Tools to enable, by dotted or MCP name (default: all)")
	flags.String(keyLanguage, string(docx_tools.LanguageZh), "Language of tool descriptions: zh or en")
	flags.Duration(keyTimeout, lark.DefaultRequestTimeout, "Timeout for each open platform request")
	flags.Bool(keyMetricsEnabled, true, "Enable the metrics server on a dedicated port (streamable-http only)")
	flags.String(keyMetricsAddr, server.DefaultMetricsAddr, "Metrics server address")
}

// loadConfig resolves the configuration from v.
func loadConfig(v *viper.Viper) (Config, error) {
	lang, err := docx_tools.ParseLanguage(v.GetString(keyLanguage))
	if err != nil {
		return Config{}, err
	}

	var tools []string
	for _, entry := range v.GetStringSlice(keyTools) {
		tools = append(tools, parseCommaSeparatedList(entry)...)
	}

	cfg := Config{
		AppID:           strings.TrimSpace(v.GetString(keyAppID)),
		AppSecret:       strings.TrimSpace(v.GetString(keyAppSecret)),
		Domain:          v.GetString(keyDomain),
		UserAccessToken: strings.TrimSpace(v.GetString(keyUserAccessToken)),
		Transport:       v.GetString(keyTransport),
		HTTPAddr:        v.GetString(keyHTTPAddr),
		Tools:           tools,
		Language:        lang,
		Timeout:         v.GetDuration(keyTimeout),
		Debug:           v.GetBool(keyDebug),
		MetricsEnabled:  v.GetBool(keyMetricsEnabled),
		MetricsAddr:     v.GetString(keyMetricsAddr),
	}
	return cfg, cfg.Validate()
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.AppID == "" {
		errs = append(errs, errors.New("app id is required (--app-id, LARKDOCS_APP_ID or APP_ID)"))
	}
	if c.AppSecret == "" {
		errs = append(errs, errors.New("app secret is required (--app-secret, LARKDOCS_APP_SECRET or APP_SECRET)"))
	}
	if _, err := lark.ResolveDomain(c.Domain); err != nil {
		errs = append(errs, err)
	}
	switch c.Transport {
	case TransportStdio, TransportStreamableHTTP:
	default:
		errs = append(errs, fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", c.Transport))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	if _, err := docx_tools.SelectTools(c.Tools); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// parseCommaSeparatedList parses a comma-separated string into a slice,
// trimming whitespace from each element and filtering out empty strings.
// Returns nil if the input is empty or contains only whitespace/commas.
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
