// file: cmd/root.go
// version: 1.0.0
// guid: 0ea44646-26fc-480a-a8aa-74304b0e3921

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdfalk/calibre-api/internal/calibre"
	"github.com/jdfalk/calibre-api/internal/config"
)

// buildVersion is stamped at build time via
// -ldflags "-X github.com/jdfalk/calibre-api/cmd.buildVersion=v1.2.3".
var buildVersion = "dev"

var cfgFile string
var libraryPath string
var workDir string
var binDir string
var logLevel string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "calibre-api",
	Short: "Web API and CLI for the Calibre e-book tools",
	Long: `Calibre API wraps the Calibre command-line tools (calibredb, ebook-convert,
ebook-meta and friends) behind an HTTP API for library management, format
conversion, metadata editing and e-book checking.

It requires a working Calibre installation; run 'calibre-api doctor' to verify
that all tools are reachable.`,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.calibre-api.yaml)")
	rootCmd.PersistentFlags().StringVar(&libraryPath, "library", "", "path to the Calibre library directory")
	rootCmd.PersistentFlags().StringVar(&workDir, "work-dir", "", "directory for uploads and produced files (default: system temp)")
	rootCmd.PersistentFlags().StringVar(&binDir, "bin-dir", "", "directory containing the Calibre executables (default: search PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug or info")

	viper.BindPFlag("library_path", rootCmd.PersistentFlags().Lookup("library"))
	viper.BindPFlag("work_dir", rootCmd.PersistentFlags().Lookup("work-dir"))
	viper.BindPFlag("bin_dir", rootCmd.PersistentFlags().Lookup("bin-dir"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".calibre-api")
	}

	viper.SetEnvPrefix("CALIBRE_API")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	config.InitConfig()
}

// newToolsFromConfig builds the tool layer from the effective configuration.
func newToolsFromConfig() *calibre.Tools {
	cfg := config.AppConfig
	return calibre.NewTools(calibre.Options{
		BinDir:  cfg.BinDir,
		WorkDir: cfg.WorkDir,
		Timeouts: calibre.Timeouts{
			Query:   config.Duration(cfg.Timeouts.Query),
			Convert: config.Duration(cfg.Timeouts.Convert),
			Add:     config.Duration(cfg.Timeouts.Add),
			LRF:     config.Duration(cfg.Timeouts.LRF),
			Debug:   config.Duration(cfg.Timeouts.Debug),
			Check:   config.Duration(cfg.Timeouts.Check),
			SMTP:    config.Duration(cfg.Timeouts.SMTP),
			Fetch:   config.Duration(cfg.Timeouts.Fetch),
		},
	})
}

// toolsFactory is swappable so command tests can inject a fake runner.
var toolsFactory = newToolsFromConfig
