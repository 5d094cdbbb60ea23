package main

import (
	"fmt"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/superisaac/rpcmq/config"
	"strings"
)

const Version = "0.1.0"

var (
	rootCmd = &cobra.Command{
		Use:   "rpcmq",
		Short: "request/reply calls over a message queue",
		Long: fmt.Sprintf(`rpcmq (v%s)

Correlates calls and replies between peers that exchange frames through
redis streams. Every flag can also be set as RPCMQ_<FLAG>, e.g.
RPCMQ_MQ_URL=redis://127.0.0.1:6379/0`, Version),
		SilenceUsage: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of rpcmq",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rpcmq v%s\n", Version)
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "path to <config.yml>")
	flags.String("mq-url", "", "mq url, redis://host:port/db or memory://, default is "+config.DefaultMQUrl)
	flags.Int("timeout", 0, "default call timeout in milliseconds")
	flags.Int("poll-interval", 0, "inbox poll interval in milliseconds")
	flags.String("log", "", "path to log output, default is stderr")
}

// initConfig reads .env files and binds RPCMQ_ prefixed env variables
func initConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("rpcmq")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// loadConfig binds the command flags, then layers them over the config file.
func loadConfig(cmd *cobra.Command, cfg *config.Config) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	setupLogger(viper.GetString("log"))

	if path := viper.GetString("config"); path != "" {
		if err := cfg.Load(path); err != nil {
			return err
		}
	}
	if v := viper.GetString("name"); v != "" {
		cfg.Name = v
	}
	if v := viper.GetString("mq-url"); v != "" {
		cfg.MQ.Urlstr = v
	}
	if v := viper.GetInt("timeout"); v > 0 {
		cfg.Timeout = v
	}
	if v := viper.GetInt("poll-interval"); v > 0 {
		cfg.MQ.PollInterval = v
	}
	return cfg.Validate()
}
