// file: cmd/serve.go
// version: 1.0.0
// guid: 61b10bff-3f5f-4b73-810b-a4ac1e07ff35

package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdfalk/calibre-api/internal/calibre"
	"github.com/jdfalk/calibre-api/internal/config"
	"github.com/jdfalk/calibre-api/internal/server"
	"github.com/jdfalk/calibre-api/internal/watcher"
)

// Seams for command tests.
var (
	startServer = func(srv *server.Server, cfg server.ServerConfig) error {
		return srv.Start(cfg)
	}
	startInboxWatcher = func(w *watcher.Watcher, inboxDir string) error {
		return w.Start(inboxDir)
	}
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the HTTP API server. When an inbox directory is configured, a
file watcher also runs and automatically adds dropped e-books to the library.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if config.AppConfig.LogLevel == "debug" {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}

		if config.AppConfig.WorkDir != "" {
			if err := os.MkdirAll(config.AppConfig.WorkDir, 0o755); err != nil {
				return fmt.Errorf("failed to create work dir: %w", err)
			}
		}

		tools := toolsFactory()

		report := tools.Doctor()
		if !report.AllFound {
			fmt.Println("Warning: not all Calibre tools were found. Run 'calibre-api doctor' for details.")
		} else if report.CalibreVersion != "" {
			fmt.Printf("Calibre %s detected\n", report.CalibreVersion)
		}

		srv := server.NewServer(server.Options{
			Tools:        tools,
			LibraryPath:  config.AppConfig.LibraryPath,
			WorkDir:      config.AppConfig.WorkDir,
			BuildVersion: buildVersion,
		})

		if inbox := config.AppConfig.InboxDir; inbox != "" {
			lib := calibre.NewLibrary(tools, config.AppConfig.LibraryPath)
			w := watcher.New(func(path string) ([]int, error) {
				return lib.Add(path, calibre.AddOptions{})
			}, 0)
			if err := startInboxWatcher(w, inbox); err != nil {
				return fmt.Errorf("failed to start inbox watcher: %w", err)
			}
			defer w.Stop()
			fmt.Printf("Watching inbox directory: %s\n", inbox)
		}

		cfg := server.ServerConfig{
			Port:         strconv.Itoa(config.AppConfig.Port),
			Host:         config.AppConfig.Host,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Conversions and uploads can hold a response or request body open for
		// a long time, so the HTTP timeouts track the longest tool budget.
		if slow := config.Duration(config.AppConfig.Timeouts.Convert); slow > cfg.WriteTimeout {
			cfg.WriteTimeout = slow + 30*time.Second
			cfg.ReadTimeout = slow + 30*time.Second
		}

		if rt := cmd.Flag("read-timeout").Value.String(); rt != "" {
			if d, err := time.ParseDuration(rt); err == nil {
				cfg.ReadTimeout = d
			}
		}
		if wt := cmd.Flag("write-timeout").Value.String(); wt != "" {
			if d, err := time.ParseDuration(wt); err == nil {
				cfg.WriteTimeout = d
			}
		}
		if it := cmd.Flag("idle-timeout").Value.String(); it != "" {
			if d, err := time.ParseDuration(it); err == nil {
				cfg.IdleTimeout = d
			}
		}

		fmt.Println("Starting Calibre API server...")
		return startServer(srv, cfg)
	},
}

func init() {
	serveCmd.Flags().Int("port", 8080, "port to run the web server on")
	serveCmd.Flags().String("host", "0.0.0.0", "host to bind the web server to")
	serveCmd.Flags().String("inbox", "", "inbox directory to watch for dropped e-books")
	serveCmd.Flags().String("read-timeout", "", "read timeout override (e.g. 15s, 1m)")
	serveCmd.Flags().String("write-timeout", "", "write timeout override (e.g. 15s, 1m)")
	serveCmd.Flags().String("idle-timeout", "", "idle timeout override (e.g. 60s, 2m)")

	viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("inbox_dir", serveCmd.Flags().Lookup("inbox"))
}
