package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sushil-negi/intake-automation-sub003/internal/config"
	"github.com/sushil-negi/intake-automation-sub003/internal/domain/assessment"
	"github.com/sushil-negi/intake-automation-sub003/internal/domain/contract"
	"github.com/sushil-negi/intake-automation-sub003/internal/platform/db"
	"github.com/sushil-negi/intake-automation-sub003/internal/platform/middleware"
	"github.com/sushil-negi/intake-automation-sub003/internal/platform/orgkey"
	"github.com/sushil-negi/intake-automation-sub003/internal/platform/remoteconfig"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "intake-server",
		Short: "Healthcare intake assessment API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(deriveKeyCmd())
	rootCmd.AddCommand(adminTokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the intake API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()
			return db.Migrate(ctx, pool)
		},
	}
}

func deriveKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "derive-key <org-id>",
		Short: "Print the base64 encryption key for an organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.MasterSecret == "" {
				return fmt.Errorf("MASTER_SECRET is required")
			}
			key := orgkey.Derive(cfg.MasterSecret, args[0])
			fmt.Println(base64.StdEncoding.EncodeToString(key))
			return nil
		},
	}
}

func adminTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "admin-token",
		Short: "Mint a bearer token for the org key service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.AuthSecret == "" {
				return fmt.Errorf("AUTH_SECRET is required")
			}
			token, err := orgkey.AdminToken(cfg.AuthSecret, jwt.MapClaims{
				"exp": time.Now().Add(24 * time.Hour).Unix(),
			})
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "intake-server").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Org key management. The key service URL normally points at this same
	// server's own /api/admin/org-key route; pointing it elsewhere lets a
	// deployment centralize derivation.
	keyClient := orgkey.NewClient(cfg.KeyServiceURL, cfg.KeyServiceToken)
	keys := orgkey.NewManager(keyClient, logger)

	resolver := remoteconfig.NewResolver(cfg.SharedConfigURL,
		remoteconfig.NewFileStore(cfg.LocalConfigPath), logger)

	assessmentSvc := assessment.NewService(assessment.NewRepoPG(pool), keys, logger)
	contractSvc := contract.NewService(contract.NewRepoPG(pool), keys, logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Recovery(logger))

	api := e.Group("/api")
	assessment.NewHandler(assessmentSvc, resolver).RegisterRoutes(api)
	contract.NewHandler(contractSvc, resolver).RegisterRoutes(api)
	orgkey.NewHandler(cfg.MasterSecret, cfg.AuthSecret).RegisterRoutes(api)
	remoteconfig.NewHandler(remoteconfig.SharedSettings{OrgName: cfg.DefaultOrg}).RegisterRoutes(api)

	// Session-scoped key lifecycle: fetch on login, clear on logout.
	api.POST("/session/key", func(c echo.Context) error {
		org := c.Request().Header.Get("X-Org-ID")
		if org == "" {
			org = cfg.DefaultOrg
		}
		keys.FetchKey(c.Request().Context(), org)
		return c.JSON(http.StatusOK, map[string]any{"hasKey": keys.HasKey(), "orgId": keys.OrgID()})
	})
	api.DELETE("/session/key", func(c echo.Context) error {
		keys.ClearKey()
		return c.NoContent(http.StatusNoContent)
	})

	e.GET("/healthz", func(c echo.Context) error {
		if err := pool.Ping(c.Request().Context()); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unreachable")
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Warm the default org's key; a failure here just means plaintext
	// persistence until a session fetch succeeds.
	if cfg.KeyServiceURL != "" {
		go keys.FetchKey(ctx, cfg.DefaultOrg)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("starting intake server")
		errCh <- e.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	keys.ClearKey()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
