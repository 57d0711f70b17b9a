package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nekruzvatanshoev/jeepsales/pkg/jeepsales/config"
	"github.com/nekruzvatanshoev/jeepsales/pkg/jeepsales/dal"
	"github.com/nekruzvatanshoev/jeepsales/pkg/jeepsales/logging"
	"github.com/nekruzvatanshoev/jeepsales/pkg/jeepsales/metrics"
	"github.com/nekruzvatanshoev/jeepsales/pkg/jeepsales/server"
	"github.com/nekruzvatanshoev/jeepsales/pkg/jeepsales/service"
	"github.com/nekruzvatanshoev/jeepsales/pkg/jeepsales/store"
)

const shutdownTimeout = 10 * time.Second

var (
	ServeCmd = &cobra.Command{
		Use:   ServeCmdName,
		Short: ServeCmdShort,
		Long:  ServeCmdLong,
		RunE:  serveCmdFunc(),
	}
)

func init() {
	flags := ServeCmd.Flags()
	flags.StringP("address", "a", ":8080", "address and port to listen on")
	flags.Bool("migrate", true, "apply pending migrations before serving")

	viper.BindPFlag("server.address", flags.Lookup("address"))
	viper.BindPFlag("database.migrate", flags.Lookup("migrate"))
}

// setup loads config, builds the logger and opens the database
func setup(ctx context.Context) (*config.Config, *slog.Logger, *store.DB, error) {
	cfg, err := config.Load(viper.GetViper(), configFile)
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, nil, err
	}
	slog.SetDefault(logger)

	db, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, logger, db, nil
}

func serveCmdFunc() func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, logger, db, err := setup(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		logger.Info("started serve cmd", "address", cfg.Server.Address, "driver", db.DriverName())

		if cfg.Database.Migrate {
			if err := db.Migrate(ctx); err != nil {
				return err
			}
		}

		svc := service.New(dal.NewSQLRepository(db, db.Dialect()), logger)
		serve := server.NewHTTPServer(cfg.Server.Address, svc,
			server.WithLogger(logger),
			server.WithPinger(db),
			server.WithMetrics(metrics.NewCollector(nil)),
			server.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		)

		errCh := make(chan error, 1)

		go func() {
			if err := serve.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down the server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return serve.Shutdown(shutdownCtx)
	}
}
