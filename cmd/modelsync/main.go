// Command modelsync uploads a local model artifact tree to S3, preserving
// the directory layout and skipping objects whose size is unchanged.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"ModelVault/internal/backend"
	"ModelVault/internal/domain/repository"
	"ModelVault/internal/uploader"
	applogger "ModelVault/pkg/logger"
)

func main() {
	var (
		bucket   = flag.String("bucket", "", "destination S3 bucket (required unless --dry-run)")
		region   = flag.String("region", "us-east-1", "AWS region")
		localDir = flag.String("local-dir", "models", "local model tree to upload")
		prefix   = flag.String("prefix", "", "key prefix prepended to every object")
		dryRun   = flag.Bool("dry-run", false, "list uploads without writing to S3")
		logLevel = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	logger, err := applogger.New(&applogger.Config{
		Level:  *logLevel,
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	if *bucket == "" && !*dryRun {
		fmt.Fprintln(os.Stderr, "either --bucket or --dry-run is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()

	var sink repository.ObjectSink
	if *bucket != "" {
		s3b, err := backend.NewS3(ctx,
			backend.WithBucket(*bucket),
			backend.WithRegion(*region),
		)
		if err != nil {
			log.Fatalf("s3: %v", err)
		}
		sink = s3b
	}

	result, err := uploader.Sync(ctx, *localDir, sink, uploader.Options{
		Prefix: strings.Trim(*prefix, "/"),
		DryRun: *dryRun,
	}, logger)
	if err != nil {
		log.Fatalf("sync: %v", err)
	}

	logger.Info("sync complete",
		applogger.Int("uploaded", result.Uploaded),
		applogger.Int("skipped", result.Skipped),
		applogger.Int("failed", result.Failed),
		applogger.Bool("dry_run", *dryRun),
	)
	if result.Failed > 0 {
		os.Exit(1)
	}
}
