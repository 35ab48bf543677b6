package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/vozaid/vozaid/cmd/vozaid/internal/config"
	"github.com/vozaid/vozaid/pkg/decision"
	"github.com/vozaid/vozaid/pkg/exemplar"
	"github.com/vozaid/vozaid/pkg/httpapi"
	"github.com/vozaid/vozaid/pkg/inference"
	"github.com/vozaid/vozaid/pkg/matcher"
	"github.com/vozaid/vozaid/pkg/pending"
	"github.com/vozaid/vozaid/pkg/storage"
)

var (
	flagListen   string
	flagDataDir  string
	flagSnapshot string
	flagEndpoint string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the vozaid HTTP service",
	Long: `Run the HTTP service.

The exemplar snapshot backend is selected with --snapshot:
  file    JSON snapshot in the data directory (default)
  badger  BadgerDB database in the data directory
  s3      JSON snapshot in an S3-compatible object store (see config)

Without a configured model endpoint the service uses a built-in
deterministic fake engine, which is enough for local demos and seeding.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "HTTP listen address (default from config, then :8000)")
	serveCmd.Flags().StringVar(&flagDataDir, "data-dir", "", "data directory for local persistence")
	serveCmd.Flags().StringVar(&flagSnapshot, "snapshot", "", "snapshot backend: file, badger, or s3")
	serveCmd.Flags().StringVar(&flagEndpoint, "model-endpoint", "", "upstream model endpoint URL")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogging()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagListen != "" {
		cfg.Listen = flagListen
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagSnapshot != "" {
		cfg.Snapshot = flagSnapshot
	}
	if flagEndpoint != "" {
		cfg.Model.Endpoint = flagEndpoint
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snap, closeSnap, err := openSnapshot(cfg)
	if err != nil {
		return err
	}
	if closeSnap != nil {
		defer closeSnap()
	}

	store := exemplar.Open(ctx, snap, exemplar.WithLogger(logger))
	cache := pending.New(cfg.PendingMax)
	svc := decision.New(store, cache, matcher.New(), decision.WithLogger(logger))

	var engine inference.Engine
	if cfg.Model.Endpoint != "" {
		engine = inference.NewClient(cfg.Model.Endpoint, cfg.Model.APIKey,
			inference.WithSampleRate(cfg.Model.SampleRate))
		logger.Info("using remote model endpoint", "endpoint", cfg.Model.Endpoint)
	} else {
		engine = &inference.Fake{}
		logger.Warn("no model endpoint configured, using deterministic fake engine")
	}

	api := httpapi.New(svc, engine, httpapi.WithLogger(logger))
	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("vozaid listening", "addr", cfg.Listen, "snapshot", cfg.Snapshot)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openSnapshot builds the configured snapshot backend.
// The returned close function releases backend resources, when any.
func openSnapshot(cfg *config.Config) (exemplar.Snapshot, func() error, error) {
	switch cfg.Snapshot {
	case "file", "":
		fs, err := storage.NewLocal(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open data dir %s: %w", cfg.DataDir, err)
		}
		return exemplar.NewFileSnapshot(fs, ""), nil, nil

	case "badger":
		snap, err := exemplar.OpenBadger(exemplar.BadgerOptions{
			Dir: filepath.Join(cfg.DataDir, "badger"),
		})
		if err != nil {
			return nil, nil, err
		}
		return snap, snap.Close, nil

	case "s3":
		if cfg.S3.Bucket == "" {
			return nil, nil, fmt.Errorf("snapshot backend s3 requires s3.bucket in config")
		}
		client := s3.New(s3.Options{
			Region:       cfg.S3.Region,
			BaseEndpoint: optional(cfg.S3.Endpoint),
			Credentials:  envCredentials(),
		})
		fs := storage.NewS3(client, cfg.S3.Bucket, cfg.S3.Prefix)
		return exemplar.NewFileSnapshot(fs, ""), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown snapshot backend %q (want file, badger, or s3)", cfg.Snapshot)
	}
}

// optional converts an empty string to a nil pointer.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// envCredentials reads static credentials from the standard AWS
// environment variables.
func envCredentials() aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		id := os.Getenv("AWS_ACCESS_KEY_ID")
		secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
		if id == "" || secret == "" {
			return aws.Credentials{}, errors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set for the s3 backend")
		}
		return aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		}, nil
	})
}
