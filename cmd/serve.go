package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ginjaninja78/category-launch-generator/internal/web"
	"github.com/ginjaninja78/category-launch-generator/pkg/utils"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the upload service",
	Long: `The serve command starts an HTTP service where a category table can be
uploaded from the browser, converted with the loaded configuration, previewed
and downloaded. Uploads are kept in a per-conversion workspace and removed
after the retention period.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	flags := serveCmd.Flags()
	flags.String("addr", ":8080", "Listen address")
	flags.String("work-dir", "./work", "Directory for upload workspaces")
	flags.Duration("retention", web.DefaultRetention, "How long workspaces are kept")
	flags.Int64("max-upload-mb", web.DefaultMaxUploadSize>>20, "Upload size limit in MiB")

	_ = viper.BindPFlag("server.addr", flags.Lookup("addr"))
	_ = viper.BindPFlag("server.work_dir", flags.Lookup("work-dir"))
	_ = viper.BindPFlag("server.retention", flags.Lookup("retention"))
	_ = viper.BindPFlag("server.max_upload_mb", flags.Lookup("max-upload-mb"))
}

func runServe(ctx context.Context) error {
	cfg, err := loadMappingConfig()
	if err != nil {
		return err
	}

	files := utils.NewFileManager(viper.GetString("server.work_dir"))
	if err := files.EnsureDirectories(); err != nil {
		return err
	}

	server := web.NewServer(cfg, files, web.Options{
		MaxUploadSize: viper.GetInt64("server.max_upload_mb") << 20,
		Retention:     viper.GetDuration("server.retention"),
	})

	go server.RunCleanup(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(viper.GetString("server.addr"))
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
