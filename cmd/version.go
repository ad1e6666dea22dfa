// file: cmd/version.go
// version: 1.0.0
// guid: b7a5a3ef-6194-4e85-ac75-143a9d84b07a

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version and the installed Calibre version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("calibre-api %s\n", buildVersion)

		info, err := toolsFactory().Version()
		if err != nil {
			fmt.Printf("Calibre: not available (%v)\n", err)
			return
		}
		fmt.Printf("Calibre: %s\n", info.Version)
	},
}
