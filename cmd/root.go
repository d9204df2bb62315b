package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "fedjobs"
)

type Config struct {
	ConfigDir   string `mapstructure:"config-dir"`
	EnvFile     string `mapstructure:"env-file"`
	APIKeyFile  string `mapstructure:"api-key-file"`
	ExcludeFile string `mapstructure:"exclude-file"`
	Exclude     *struct {
		Organizations []string
	}
	AI *AIConfig `mapstructure:"ai"`
}

type AIConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Provider        string        `mapstructure:"provider"`
	MinimumFitScore float64       `mapstructure:"minimum-fit-score"`
	Gemini          *GeminiConfig `mapstructure:"gemini"`
	Prompt          *PromptConfig `mapstructure:"prompt"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type PromptConfig struct {
	ExtraCriteria    string `mapstructure:"extra-criteria"`
	DealBreakers     string `mapstructure:"deal-breakers"`
	Tone             string `mapstructure:"tone"`
	UserInstructions string `mapstructure:"user-instructions"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "fedjobs searches federal job listings near you and matches them against your skills and degree",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("api-key-file", "USAJOBS_API_KEY_FILE"); err != nil {
		log.Fatalf("binding USAJOBS_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is fedjobs.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("config-dir", "", "directory with api_config.json, job_categories.json, ui_config.json and sample_jobs.json")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file with USAJOBS_API_KEY and USAJOBS_EMAIL")
	rootCmd.PersistentFlags().String("api-key-file", "", "file with the USAJOBS API key")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("config-dir", rootCmd.PersistentFlags().Lookup("config-dir"))
	viper.BindPFlag("env-file", rootCmd.PersistentFlags().Lookup("env-file"))
	viper.BindPFlag("api-key-file", rootCmd.PersistentFlags().Lookup("api-key-file"))
}

func initConfig() {
	if searchCmd.CalledAs() == "" && checkCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
		viper.SetConfigType("yaml")
	}

	// Every setting has a flag or a default, so only an explicit config file
	// must exist.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}

	return config, nil
}
