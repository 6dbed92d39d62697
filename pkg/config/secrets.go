package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Secrets mirrors the sections of the keys.toml file.
type Secrets struct {
	Database DatabaseCredentials `mapstructure:"database_credentials"`
	FT       FTSite              `mapstructure:"fin_times_site"`
	Nvidia   NvidiaSite          `mapstructure:"original_nvidia_site"`
	Finnhub  FinnhubAPI          `mapstructure:"api_finhub"`
}

// DatabaseCredentials holds the connection parameters. Password may be empty.
type DatabaseCredentials struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Database string `mapstructure:"database"`
}

// FTSite holds the Financial Times search page settings.
type FTSite struct {
	SiteURL    string `mapstructure:"site_ft"`
	Suffix     string `mapstructure:"ft_sup"`
	LinkPrefix string `mapstructure:"link_ft_for_href"`
}

// NvidiaSite holds the NVIDIA newsroom settings.
type NvidiaSite struct {
	SiteURL     string `mapstructure:"site_nv_url"`
	RelativeURL string `mapstructure:"relative_site_nv_url"`
}

// FinnhubAPI holds the Finnhub API key.
type FinnhubAPI struct {
	APIKey string `mapstructure:"api_key"`
}

// secretKeys lists every key of the secrets file so each one can be bound
// to its environment variable, present in the file or not.
var secretKeys = []string{
	"database_credentials.username",
	"database_credentials.password",
	"database_credentials.host",
	"database_credentials.port",
	"database_credentials.database",
	"fin_times_site.site_ft",
	"fin_times_site.ft_sup",
	"fin_times_site.link_ft_for_href",
	"original_nvidia_site.site_nv_url",
	"original_nvidia_site.relative_site_nv_url",
	"api_finhub.api_key",
}

// LoadSecrets reads the TOML secrets file at path.
// NEWSALPHA_<SECTION>_<KEY> environment variables override file values,
// e.g. NEWSALPHA_API_FINHUB_API_KEY.
func LoadSecrets(path string) (*Secrets, error) {
	v := viper.New()

	v.SetDefault("database_credentials.host", "localhost")
	v.SetDefault("database_credentials.port", "5432")

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix("NEWSALPHA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range secretKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read secrets file %s: %w", path, err)
	}

	var s Secrets
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode secrets file %s: %w", path, err)
	}

	return &s, nil
}

// DSN builds a postgres connection URL. The password segment is omitted
// when empty so peer and trust authentication keep working.
func (d DatabaseCredentials) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, d.Port),
		Path:   "/" + d.Database,
	}
	if d.Password == "" {
		u.User = url.User(d.Username)
	} else {
		u.User = url.UserPassword(d.Username, d.Password)
	}
	return u.String()
}

// Validate checks that the database section is usable.
func (d DatabaseCredentials) Validate() error {
	if d.Username == "" {
		return fmt.Errorf("database_credentials.username is required")
	}
	if d.Database == "" {
		return fmt.Errorf("database_credentials.database is required")
	}
	return nil
}

// DatabaseURL resolves the connection string: the DATABASE_URL override
// wins, otherwise the secrets file is read.
func (c *Config) DatabaseURL() (string, error) {
	if c.Database.URL != "" {
		return c.Database.URL, nil
	}

	secrets, err := LoadSecrets(c.SecretsFile)
	if err != nil {
		return "", err
	}
	if err := secrets.Database.Validate(); err != nil {
		return "", err
	}
	return secrets.Database.DSN(), nil
}
