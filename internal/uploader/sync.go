package uploader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"ModelVault/internal/domain/repository"
	applogger "ModelVault/pkg/logger"
)

// Options controls a sync run.
type Options struct {
	// Prefix is prepended to every object key.
	Prefix string
	// DryRun lists what would be uploaded without touching the sink.
	DryRun bool
}

// Result summarizes a sync run.
type Result struct {
	Uploaded int
	Skipped  int
	Failed   int
}

// Sync walks localDir and uploads every regular file to the sink, preserving
// the relative directory layout in the object keys. Files whose remote size
// already matches are skipped. A nil sink is only valid with DryRun.
func Sync(ctx context.Context, localDir string, sink repository.ObjectSink, opts Options, log *applogger.Logger) (*Result, error) {
	info, err := os.Stat(localDir)
	if err != nil {
		return nil, fmt.Errorf("local dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("local dir %s is not a directory", localDir)
	}
	if sink == nil && !opts.DryRun {
		return nil, fmt.Errorf("sink is required unless dry run")
	}

	result := &Result{}
	err = filepath.WalkDir(localDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, err := filepath.Rel(localDir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if opts.Prefix != "" {
			key = opts.Prefix + "/" + key
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}
		size := fi.Size()

		if opts.DryRun {
			result.Uploaded++
			if log != nil {
				log.Info("would upload",
					applogger.String("key", key),
					applogger.Int64("bytes", size),
				)
			}
			return nil
		}

		remoteSize, exists, err := sink.Head(ctx, key)
		if err != nil {
			result.Failed++
			if log != nil {
				log.Error("head failed", applogger.String("key", key), applogger.Error(err))
			}
			return nil
		}
		if exists && remoteSize == size {
			result.Skipped++
			if log != nil {
				log.Debug("unchanged, skipping", applogger.String("key", key))
			}
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			result.Failed++
			if log != nil {
				log.Error("open failed", applogger.String("path", path), applogger.Error(err))
			}
			return nil
		}
		uploadErr := sink.Put(ctx, key, file, size)
		_ = file.Close()
		if uploadErr != nil {
			result.Failed++
			if log != nil {
				log.Error("upload failed", applogger.String("key", key), applogger.Error(uploadErr))
			}
			return nil
		}

		result.Uploaded++
		if log != nil {
			log.Info("uploaded",
				applogger.String("key", key),
				applogger.Int64("bytes", size),
			)
		}
		return nil
	})
	if err != nil {
		return result, err
	}
	return result, nil
}
