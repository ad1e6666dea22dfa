// file: cmd/doctor.go
// version: 1.0.0
// guid: c9e8cf6c-5330-410e-a7d7-9707dc89e387

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jdfalk/calibre-api/internal/calibre"
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the Calibre tools are installed and reachable",
	Long: `Probe every Calibre executable this service uses and report where each
one was found. Exits non-zero when any tool is missing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDoctor(toolsFactory())
	},
}

func runDoctor(tools *calibre.Tools) error {
	report := tools.Doctor()

	fmt.Printf("%-22s %-9s %s\n", "BINARY", "STATUS", "PATH")
	missing := 0
	for _, b := range report.Binaries {
		status := "ok"
		path := b.Path
		if !b.Found {
			status = "MISSING"
			path = "-"
			missing++
		}
		fmt.Printf("%-22s %-9s %s\n", b.Binary, status, path)
	}

	fmt.Println()
	if report.CalibreVersion != "" {
		fmt.Printf("Calibre version: %s\n", report.CalibreVersion)
	}
	if missing > 0 {
		return fmt.Errorf("%d of %d Calibre tools are missing; install Calibre or set --bin-dir", missing, len(report.Binaries))
	}

	fmt.Println("All Calibre tools found.")
	return nil
}
