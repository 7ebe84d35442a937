package cli

import (
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/passreg/passreg/internal/service"
	"github.com/passreg/passreg/internal/store"
)

// resolveDataDir returns the effective data directory: the --data-dir flag,
// then the config file, then ~/.passreg.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if dir := viper.GetString("data_dir"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return home + "/.passreg"
}

// openStore opens the SQLite-backed store at the effective data directory.
func openStore() (*store.Store, error) {
	return store.New(resolveDataDir())
}

// jwtSecret returns the configured token signing secret, falling back to a
// development default.
func jwtSecret() string {
	if secret := viper.GetString("auth.jwt_secret"); secret != "" {
		return secret
	}
	return "passreg-dev-secret-change-me"
}

// tokenTTL returns the configured token lifetime.
func tokenTTL() time.Duration {
	if ttl := viper.GetDuration("auth.token_ttl"); ttl > 0 {
		return ttl
	}
	return service.TokenTTLDefault
}

// hostSetting returns the configured listen host.
func hostSetting() string {
	if host := viper.GetString("server.host"); host != "" {
		return host
	}
	return "0.0.0.0"
}

// portSetting returns the configured listen port.
func portSetting() int {
	if port := viper.GetInt("server.port"); port != 0 {
		return port
	}
	return 8080
}
