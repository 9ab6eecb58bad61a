package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-jupyter/pkg/config"
	"github.com/mattsolo1/grove-jupyter/pkg/contents"
	"github.com/mattsolo1/grove-jupyter/pkg/history"
	"github.com/mattsolo1/grove-jupyter/pkg/service"
)

var (
	cfgFile        string
	ServerOverride string
	BaseURL        string
	LogLevel       string
)

func InitConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "jx")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("JX")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("data_dir", filepath.Join(os.Getenv("HOME"), ".local", "share", "jx"))
	viper.SetDefault("editor", os.Getenv("EDITOR"))
	viper.SetDefault("timeout", contents.DefaultTimeout)
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("history", true)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Warning: could not read config %s: %v\n", cfgFile, err)
		}
	}
}

// Servers returns the configured servers.
func Servers() ([]config.Server, error) {
	return config.DecodeServers(viper.Get("servers"))
}

// SelectServer resolves the server to talk to. --base-url (or base_url and
// token at the top level of the config) wins over the servers list unless
// --server names a listed server.
func SelectServer() (config.Server, error) {
	servers, err := Servers()
	if err != nil {
		return config.Server{}, err
	}

	fallback := config.Server{
		Name:    config.DefaultServerName,
		BaseURL: firstNonEmpty(BaseURL, viper.GetString("base_url")),
		Token:   viper.GetString("token"),
	}

	name := firstNonEmpty(ServerOverride, viper.GetString("server"))
	return config.Select(servers, name, fallback)
}

// NewLogger builds the diagnostic logger. Output goes to stderr so it never
// mixes with command output.
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(firstNonEmpty(LogLevel, viper.GetString("log_level")))
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)
	return logger
}

// OpenHistory opens the history store under the data directory.
func OpenHistory() (*history.Store, error) {
	return history.Open(viper.GetString("data_dir"))
}

func InitService() (*service.Service, error) {
	server, err := SelectServer()
	if err != nil {
		return nil, err
	}

	logger := NewLogger()

	timeout := server.Timeout
	if timeout == 0 {
		timeout = viper.GetDuration("timeout")
	}
	if timeout == 0 {
		timeout = contents.DefaultTimeout
	}

	client, err := contents.New(contents.Config{
		BaseURL: server.BaseURL,
		Token:   server.ResolvedToken(),
		Timeout: timeout,
	}, contents.WithLogger(logger.WithField("server", server.Name)))
	if err != nil {
		return nil, fmt.Errorf("server %q: %w", server.Name, err)
	}

	opts := []service.Option{service.WithLogger(logger)}
	if viper.GetBool("history") {
		store, err := OpenHistory()
		if err != nil {
			// Open and save still work without history.
			logger.WithError(err).Warn("History disabled")
		} else {
			opts = append(opts, service.WithRecorder(store))
		}
	}

	svcConfig := &service.Config{
		Server: server.Name,
		Editor: viper.GetString("editor"),
	}
	return service.New(svcConfig, client, opts...), nil
}

func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/jx/config.yaml)")
	cmd.PersistentFlags().StringVarP(&ServerOverride, "server", "s", "", "Name of the configured server to use")
	cmd.PersistentFlags().StringVar(&BaseURL, "base-url", "", "Contents API base URL, e.g. http://localhost:8888/api/contents")
	cmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "Diagnostic log level (debug, info, warn, error)")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
