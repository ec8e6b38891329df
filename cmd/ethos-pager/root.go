package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sternrassler/ethos-paging/pkg/client"
	"github.com/Sternrassler/ethos-paging/pkg/logging"
	"github.com/Sternrassler/ethos-paging/pkg/metrics"
)

// envPrefix maps flag "base-url" to ETHOS_BASE_URL.
const envPrefix = "ETHOS"

// app carries what every subcommand needs once the root has been configured.
type app struct {
	v      *viper.Viper
	out    io.Writer
	logger zerolog.Logger
	client *client.Client
	redis  *redis.Client
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out}

	rootCmd := &cobra.Command{
		Use:           "ethos-pager",
		Short:         "Page through Ethos integration resources",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}
	rootCmd.SetOut(out)

	flags := rootCmd.PersistentFlags()
	flags.String("base-url", client.DefaultBaseURL, "Ethos integration base URL")
	flags.String("api-key", "", "Ethos application API key")
	flags.String("user-agent", client.DefaultUserAgent, "User-Agent header")
	flags.Duration("timeout", client.DefaultConfig("").Timeout, "timeout of every single HTTP call")
	flags.Duration("token-ttl", client.DefaultConfig("").TokenTTL, "lifetime of issued bearer tokens")
	flags.String("redis-addr", "", "Redis address for a shared bearer token cache")
	flags.String("log-level", string(logging.LevelWarn), "log level (debug, info, warn, error, disabled)")
	flags.Bool("pretty", false, "human-readable log output")
	flags.Bool("metrics", false, "print collected metrics after the command")
	flags.String("env-file", ".env", "dotenv file loaded before reading the environment")

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(flags); err != nil {
		panic(fmt.Sprintf("bind flags: %v", err))
	}

	rootCmd.AddCommand(
		newRowsCommand(a),
		newPagesCommand(a),
		newCountCommand(a),
		newGetCommand(a),
	)

	return rootCmd
}

// setup loads the dotenv file, configures logging and builds the client.
func (a *app) setup(cmd *cobra.Command) error {
	if err := godotenv.Load(a.v.GetString("env-file")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(a.v.GetString("log-level")),
		Pretty: a.v.GetBool("pretty"),
		Output: os.Stderr,
	})
	a.logger = logging.NewLogger(logging.ComponentCLI)

	cfg := client.DefaultConfig(a.v.GetString("api-key"))
	cfg.BaseURL = a.v.GetString("base-url")
	cfg.UserAgent = a.v.GetString("user-agent")
	cfg.Timeout = a.v.GetDuration("timeout")
	cfg.TokenTTL = a.v.GetDuration("token-ttl")

	if addr := a.v.GetString("redis-addr"); addr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: addr})
		if err := a.redis.Ping(cmd.Context()).Err(); err != nil {
			a.logger.Warn().Err(err).Str("addr", addr).Msg("Redis unreachable, token cache disabled")
			a.redis.Close()
			a.redis = nil
		} else {
			cfg.Redis = a.redis
		}
	}

	c, err := client.New(cfg)
	if err != nil {
		return err
	}
	a.client = c

	a.logger.Info().
		Str("base_url", cfg.BaseURL).
		Bool("token_cache", cfg.Redis != nil).
		Str("command", cmd.Name()).
		Msg("Ethos client ready")

	return nil
}

func (a *app) teardown() error {
	if a.client != nil {
		a.client.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
	if a.v.GetBool("metrics") {
		return metrics.WriteText(a.out)
	}
	return nil
}
