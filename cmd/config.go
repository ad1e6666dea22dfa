// file: cmd/config.go
// version: 1.0.0
// guid: 1eaf1d5a-12cd-40cb-866d-b208365b9455

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jdfalk/calibre-api/internal/config"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a commented starter configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("path")
			if path == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				path = filepath.Join(home, ".calibre-api.yaml")
			}
			if err := config.WriteStarterConfig(path); err != nil {
				return err
			}
			fmt.Printf("Wrote starter config to %s\n", path)
			return nil
		},
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.EffectiveYAML()
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}

	configSaveCmd = &cobra.Command{
		Use:   "save <path>",
		Short: "Save the effective configuration to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SaveConfigToFile(args[0]); err != nil {
				return err
			}
			fmt.Printf("Saved effective config to %s\n", args[0])
			return nil
		},
	}
)

func init() {
	configInitCmd.Flags().String("path", "", "where to write the file (default $HOME/.calibre-api.yaml)")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSaveCmd)
}
