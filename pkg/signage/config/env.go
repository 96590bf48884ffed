package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// WithEnv applies environment variable overrides using the provided prefix.
//
// Server:
//
//	PORT - Server port (default: "8080")
//	ENVIRONMENT - Runtime environment (default: "development")
//
// Database:
//
//	DATABASE_URL - "memory" (default) or a postgres:// connection string
//
// Media storage:
//
//	STORAGE_URL - one of:
//	              "memory://" - In-memory storage (default)
//	              "file:///path/to/data" - Filesystem storage
//	              "s3://bucket?region=us-east-1&endpoint=http://localhost:9000"
//
// Content:
//
//	DEFAULT_KIND - default content kind for uploads (default: "Image")
//	DEFAULT_DURATION - default display duration in seconds (default: 10)
//	BROWSE_PATH - redirect target for stale content links
func WithEnv(prefix string) Option {
	return func(c *ServerConfig) error {
		if v, ok := lookupEnv(prefix, "PORT"); ok && v != "" {
			c.Port = v
		}
		if v, ok := lookupEnv(prefix, "ENVIRONMENT"); ok && v != "" {
			c.Environment = v
		}
		if v, ok := lookupEnv(prefix, "DEFAULT_KIND"); ok {
			c.DefaultKind = v
		}
		if v, ok := lookupEnv(prefix, "DEFAULT_DURATION"); ok && v != "" {
			d, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid integer for %sDEFAULT_DURATION: %w", prefix, err)
			}
			c.DefaultDuration = d
		}
		if v, ok := lookupEnv(prefix, "BROWSE_PATH"); ok && v != "" {
			c.BrowsePath = v
		}

		if err := applyDatabaseEnv(prefix, c); err != nil {
			return err
		}
		return applyStorageEnv(prefix, c)
	}
}

func applyDatabaseEnv(prefix string, c *ServerConfig) error {
	dbURL, hasURL := lookupEnv(prefix, "DATABASE_URL")

	if !hasURL || dbURL == "" || dbURL == "memory" {
		c.DatabaseType = "memory"
		c.DatabaseURL = ""
		return nil
	}

	if strings.HasPrefix(dbURL, "postgresql://") || strings.HasPrefix(dbURL, "postgres://") {
		c.DatabaseType = "postgres"
		c.DatabaseURL = dbURL
		return nil
	}
	return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory' or 'postgresql://...')", dbURL)
}

func applyStorageEnv(prefix string, c *ServerConfig) error {
	storageURL, hasURL := lookupEnv(prefix, "STORAGE_URL")

	if !hasURL || storageURL == "" || storageURL == "memory" || storageURL == "memory://" {
		c.StorageType = "memory"
		return nil
	}

	if path, ok := strings.CutPrefix(storageURL, "file://"); ok {
		if path == "" {
			return fmt.Errorf("filesystem path cannot be empty in STORAGE_URL")
		}
		c.StorageType = "fs"
		c.FSBaseDir = path
		return nil
	}

	if strings.HasPrefix(storageURL, "s3://") {
		return applyS3Env(storageURL, c)
	}
	return fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", storageURL)
}

// applyS3Env configures S3 storage from a URL of the form
// s3://bucket?region=us-east-1&endpoint=http://localhost:9000
func applyS3Env(storageURL string, c *ServerConfig) error {
	u, err := url.Parse(storageURL)
	if err != nil {
		return fmt.Errorf("invalid STORAGE_URL: %w", err)
	}
	if u.Host == "" {
		return fmt.Errorf("S3 bucket name cannot be empty in STORAGE_URL")
	}

	c.StorageType = "s3"
	c.S3.Bucket = u.Host
	c.S3.Region = "us-east-1"
	if region := u.Query().Get("region"); region != "" {
		c.S3.Region = region
	}
	if endpoint := u.Query().Get("endpoint"); endpoint != "" {
		c.S3.Endpoint = endpoint
		c.S3.UsePathStyle = true
	}

	if accessKey, ok := os.LookupEnv("AWS_ACCESS_KEY_ID"); ok && accessKey != "" {
		c.S3.AccessKeyID = accessKey
	}
	if secretKey, ok := os.LookupEnv("AWS_SECRET_ACCESS_KEY"); ok && secretKey != "" {
		c.S3.SecretAccessKey = secretKey
	}
	if region, ok := os.LookupEnv("AWS_REGION"); ok && region != "" {
		c.S3.Region = region
	}
	return nil
}

func lookupEnv(prefix, key string) (string, bool) {
	return os.LookupEnv(prefix + key)
}
