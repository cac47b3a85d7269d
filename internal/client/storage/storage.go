// Package storage opens the key/value backend selected in the configuration
// and runs its migrations.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/soraprompter/internal/client/config"
	"github.com/dmitrijs2005/soraprompter/internal/filex"
	"github.com/dmitrijs2005/soraprompter/internal/migrations"
	"github.com/dmitrijs2005/soraprompter/internal/repositories/kv"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

var (
	sqlOpen = sql.Open

	migrateUp = migrations.Up

	newRedisClient = func(opt *redis.Options) *redis.Client {
		return redis.NewClient(opt)
	}

	pingRedis = func(ctx context.Context, c *redis.Client) error {
		return c.Ping(ctx).Err()
	}

	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// Backend is an opened key/value repository together with the resources
// that must be released when the CLI exits.
type Backend struct {
	Repo  kv.Repository
	Name  string
	close func() error
}

func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open connects to the backend named by cfg.StorageBackend.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		return openSQLite(ctx, cfg)
	case config.BackendPostgres:
		return openPostgres(ctx, cfg)
	case config.BackendRedis:
		return openRedis(ctx, cfg)
	case config.BackendS3:
		return openS3(ctx, cfg)
	case config.BackendMemory:
		return &Backend{Repo: kv.NewMemoryRepository(), Name: config.BackendMemory}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func openSQLite(ctx context.Context, cfg *config.Config) (*Backend, error) {
	dir, err := filex.EnsureSubdDir(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	db, err := openSQL(ctx, "sqlite", kv.SQLiteDSN(filepath.Join(dir, cfg.SQLiteFile)), migrations.SQLite)
	if err != nil {
		return nil, err
	}
	// one connection per process; other processes are waited on via busy_timeout.
	db.SetMaxOpenConns(1)

	return &Backend{Repo: kv.NewSQLiteRepository(db), Name: config.BackendSQLite, close: db.Close}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (*Backend, error) {
	db, err := openSQL(ctx, "pgx", cfg.PostgresDSN, migrations.Postgres)
	if err != nil {
		return nil, err
	}
	return &Backend{Repo: kv.NewPostgresRepository(db), Name: config.BackendPostgres, close: db.Close}, nil
}

func openSQL(ctx context.Context, driver, dsn string, d migrations.Dialect) (*sql.DB, error) {
	db, err := sqlOpen(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := migrateUp(ctx, db, d); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return db, nil
}

func openRedis(ctx context.Context, cfg *config.Config) (*Backend, error) {
	client := newRedisClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := pingRedis(ctx, client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}
	return &Backend{Repo: kv.NewRedisRepository(client, cfg.RedisPrefix), Name: config.BackendRedis, close: client.Close}, nil
}

func openS3(ctx context.Context, cfg *config.Config) (*Backend, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3User != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3User,
			cfg.S3Password,
			"",
		)))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &Backend{Repo: kv.NewS3Repository(client, cfg.S3Bucket, cfg.S3Prefix), Name: config.BackendS3}, nil
}
