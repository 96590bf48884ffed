// Package config assembles a signage.Service from declarative server
// configuration.
package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/placard/placard/pkg/signage"
	"github.com/placard/placard/pkg/signage/kinds"
	repomemory "github.com/placard/placard/pkg/signage/repo/memory"
	repopostgres "github.com/placard/placard/pkg/signage/repo/postgres"
	fsstorage "github.com/placard/placard/pkg/signage/storage/fs"
	memorystorage "github.com/placard/placard/pkg/signage/storage/memory"
	s3storage "github.com/placard/placard/pkg/signage/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:            "8080",
		Environment:     "development",
		DatabaseType:    "memory",
		StorageType:     "memory",
		DefaultKind:     "Image",
		DefaultDuration: 10,
		BrowsePath:      "/contents",
		EnableEventLog:  true,
	}
}

// ServerConfig represents server configuration for the signage service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"

	// Media storage configuration
	StorageType string // "memory", "fs", "s3"
	FSBaseDir   string
	S3          s3storage.Config

	// Content configuration
	DefaultKind     string // process-wide default content kind for uploads
	DefaultDuration int    // default display duration in seconds

	// BrowsePath is where stale content links redirect to
	BrowsePath string

	EnableEventLog bool

	// Gate is the authorization collaborator; defaults to allow-all
	Gate signage.CapabilityGate
}

// WithCapabilityGate sets the authorization collaborator.
func WithCapabilityGate(gate signage.CapabilityGate) Option {
	return func(c *ServerConfig) error {
		c.Gate = gate
		return nil
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}
	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}
	switch c.StorageType {
	case "memory":
	case "fs":
		if c.FSBaseDir == "" {
			return errors.New("fs base directory is required when using fs storage")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("s3 bucket is required when using s3 storage")
		}
	default:
		return errors.New("storage_type must be 'memory', 'fs' or 's3'")
	}
	if c.DefaultDuration < 0 {
		return errors.New("default duration must not be negative")
	}
	return nil
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService(ctx context.Context) (signage.Service, error) {
	repo, err := c.buildRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	media, err := c.buildMediaStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build media store: %w", err)
	}

	registry := signage.NewKindRegistry(c.DefaultKind)
	if err := kinds.RegisterBuiltins(registry, kinds.Config{Media: media}); err != nil {
		return nil, fmt.Errorf("failed to register content kinds: %w", err)
	}

	options := []signage.Option{
		signage.WithRepository(repo),
		signage.WithKindRegistry(registry),
		signage.WithMediaStore(media),
		signage.WithDefaultDuration(c.DefaultDuration),
	}
	if c.Gate != nil {
		options = append(options, signage.WithCapabilityGate(c.Gate))
	}
	if c.EnableEventLog {
		options = append(options, signage.WithEventSink(signage.NewLogEventSink()))
	}

	return signage.New(options...)
}

func (c *ServerConfig) buildRepository(ctx context.Context) (signage.Repository, error) {
	switch c.DatabaseType {
	case "postgres":
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		return repopostgres.NewWithPool(pool), nil
	default:
		return repomemory.New(), nil
	}
}

func (c *ServerConfig) buildMediaStore() (signage.MediaStore, error) {
	switch c.StorageType {
	case "fs":
		return fsstorage.New(fsstorage.Config{BaseDir: c.FSBaseDir})
	case "s3":
		return s3storage.New(c.S3)
	default:
		return memorystorage.New(), nil
	}
}
