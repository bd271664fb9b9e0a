package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gourdian25/memberjwt"
	"github.com/gourdian25/memberjwt/internal/db"
	"github.com/gourdian25/memberjwt/internal/logger"
	"github.com/gourdian25/memberjwt/internal/server"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Directory backends selectable with --directory.
const (
	directoryRedis = "redis"
	directorySQL   = "sql"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(memberjwt.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server", "start"},
		Short:   "Serve token issuance, renewal and checks over HTTP",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := memberjwt.LoadConfig(root.configPath)
			if err != nil {
				return err
			}

			directory, closeDirectory, err := openDirectory(ctx, v)
			if err != nil {
				return err
			}
			defer closeDirectory()

			svc, err := memberjwt.NewService(cfg,
				memberjwt.WithResolver(memberjwt.NewDirectoryResolver(directory, cfg.RevealAuthFailureReason)))
			if err != nil {
				return err
			}

			return run(ctx, server.New(v.GetString("addr"), svc))
		},
	}

	flags := cmd.Flags()
	flags.String("addr", ":8080", "HTTP listen address")
	flags.String("directory", directoryRedis, "member directory backend: redis or sql")
	flags.String("redis-addr", "localhost:6379", "Redis address for the redis directory")
	flags.String("redis-password", "", "Redis password")
	flags.Int("redis-db", 0, "Redis database number")
	flags.String("redis-prefix", "", "key prefix of member hashes (default \"member:\")")
	flags.String("database-url", "", "PostgreSQL URL or SQLite path for the sql directory")
	flags.String("identifier-column", "email", "column members log in with: email or id")
	_ = v.BindPFlags(flags)

	return cmd
}

func openDirectory(ctx context.Context, v *viper.Viper) (memberjwt.MemberDirectory, func(), error) {
	switch backend := v.GetString("directory"); backend {
	case directoryRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     v.GetString("redis-addr"),
			Password: v.GetString("redis-password"),
			DB:       v.GetInt("redis-db"),
		})
		directory, err := memberjwt.NewRedisMemberDirectory(client, v.GetString("redis-prefix"))
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		logger.Info("Using Redis member directory", "addr", v.GetString("redis-addr"))
		return directory, func() { _ = client.Close() }, nil

	case directorySQL:
		conn, driver, err := db.Open(ctx, v.GetString("database-url"))
		if err != nil {
			return nil, nil, err
		}
		directory, err := memberjwt.NewSQLMemberDirectory(conn, string(driver), v.GetString("identifier-column"))
		if err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		if err := directory.CreateSchema(ctx); err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		logger.Info("Using SQL member directory", "driver", string(driver))
		return directory, func() { _ = conn.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown directory backend %q", backend)
	}
}

func run(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
