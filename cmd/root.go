package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "vap"

	defaultAPIURL  = "http://localhost:3000"
	defaultTimeout = 60 * time.Second
)

type Config struct {
	APIURL      string        `mapstructure:"api-url"`
	SessionFile string        `mapstructure:"session-file"`
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"user-agent"`
	Debug       bool          `mapstructure:"debug"`
	JSON        bool          `mapstructure:"json"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "vap is a command line client for managing developers and generating tailored resumes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is vap.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("api-url", "", "base URL of the VAP backend (default "+defaultAPIURL+")")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("api-url", rootCmd.PersistentFlags().Lookup("api-url"))

	viper.SetDefault("api-url", defaultAPIURL)
	// Unmarshal only sees keys viper knows about, so VAP_SESSION_FILE needs a default to land.
	viper.SetDefault("session-file", "")
	viper.SetDefault("timeout", defaultTimeout)
	viper.SetDefault("user-agent", app+"/"+version)

	viper.SetEnvPrefix("VAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// The web client was configured through VITE_API_URL; keep honouring it.
	if err := viper.BindEnv("api-url", "VAP_API_URL", "VITE_API_URL"); err != nil {
		log.Fatalf("binding VAP_API_URL environment variable: %v", err)
	}
}

func initConfig() {
	// .env only fills variables that are not already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// The config file is optional unless it was asked for explicitly.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	return config, nil
}
