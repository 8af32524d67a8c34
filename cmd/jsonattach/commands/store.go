package commands

import (
	"fmt"
	"log/slog"

	"github.com/haivivi/jsonattach/cmd/jsonattach/internal/document"
	"github.com/haivivi/jsonattach/pkg/cli"
	"github.com/haivivi/jsonattach/pkg/entity"
	"github.com/haivivi/jsonattach/pkg/storage"
)

// repository is the document repository the commands operate on.
type repository = entity.Repository[document.Document, entity.Blob]

// testStoreOverride replaces the configured store in tests.
var testStoreOverride storage.FileStore

// session is an opened repository plus whatever must be released after use.
type session struct {
	repo     *repository
	location string
	close    func() error
}

func (s *session) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// openSession resolves the store, collection and codec from the global
// flags and the selected context, and opens the repository.
//
// --dir wins over contexts. Without --dir and without any context, the
// default local data directory is used.
func openSession() (*session, error) {
	ctx, err := resolveContext()
	if err != nil {
		return nil, err
	}

	codecName := ctx.Codec
	if codecFlag != "" {
		codecName = codecFlag
	}
	codec, err := entity.CodecByName(codecName)
	if err != nil {
		return nil, err
	}

	fs, location, closeFn, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	slog.Debug("opened store", "context", ctx.Name, "store", ctx.StoreKind(), "location", location, "collection", ctx.Collection)

	repo := entity.NewRepository[document.Document, entity.Blob](fs, ctx.Collection, entity.RestoreBlob,
		entity.WithCodec(codec),
		entity.WithLogger(slog.Default()),
	)
	if ctx.Collection != "" {
		location = storage.Join(location, ctx.Collection)
	}
	return &session{repo: repo, location: location, close: closeFn}, nil
}

// resolveContext picks the context for this invocation and applies the
// JSONATTACH_* environment overrides to a copy of it.
func resolveContext() (*cli.Context, error) {
	envs, err := cli.LoadEnv()
	if err != nil {
		return nil, err
	}
	if dirFlag != "" {
		return envs.Apply(&cli.Context{Name: "--dir", Store: cli.StoreLocal, Dir: dirFlag}), nil
	}
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	name := contextName
	if name == "" {
		name = envs.Context
	}
	if name == "" && cfg.CurrentContext == "" {
		paths, err := cli.NewPaths(appName)
		if err != nil {
			return nil, err
		}
		return envs.Apply(&cli.Context{Name: "default", Store: cli.StoreLocal, Dir: paths.DataDir()}), nil
	}
	ctx, err := cfg.ResolveContext(name)
	if err != nil {
		return nil, err
	}
	return envs.Apply(ctx), nil
}

func openStore(ctx *cli.Context) (storage.FileStore, string, func() error, error) {
	if testStoreOverride != nil {
		return testStoreOverride, "test", nil, nil
	}
	if err := ctx.Validate(); err != nil {
		return nil, "", nil, fmt.Errorf("context %q: %w", ctx.Name, err)
	}

	switch ctx.StoreKind() {
	case cli.StoreLocal:
		dir := ctx.Dir
		if dir == "" {
			paths, err := cli.NewPaths(appName)
			if err != nil {
				return nil, "", nil, err
			}
			if err := paths.EnsureDataDir(); err != nil {
				return nil, "", nil, err
			}
			dir = paths.DataDir()
		}
		l, err := storage.NewLocal(dir)
		if err != nil {
			return nil, "", nil, fmt.Errorf("open local store: %w", err)
		}
		return l, l.Root(), nil, nil

	case cli.StoreMemory:
		return storage.NewMemory(), "memory", nil, nil

	case cli.StoreBadger:
		b, err := storage.NewBadger(storage.BadgerOptions{Dir: ctx.Dir})
		if err != nil {
			return nil, "", nil, fmt.Errorf("open badger store: %w", err)
		}
		return b, "badger:" + ctx.Dir, b.Close, nil

	case cli.StoreS3:
		s := ctx.S3
		client := storage.NewS3Client(s.S3Config)
		location := "s3://" + s.Bucket
		if s.Prefix != "" {
			location += "/" + s.Prefix
		}
		return storage.NewS3(client, s.Bucket, s.Prefix), location, nil, nil
	}
	return nil, "", nil, fmt.Errorf("unknown store %q", ctx.Store)
}
