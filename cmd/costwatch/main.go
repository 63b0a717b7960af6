// Command costwatch runs a one-shot daily cost check or prints a monthly
// report. Intended to run from a scheduler; the serving process has its own
// poll loop.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"ModelVault/internal/costwatch"
	"ModelVault/internal/domain/models"
	repoimpl "ModelVault/internal/repository"
	"ModelVault/pkg/clickhouse"
	"ModelVault/pkg/config"
	"ModelVault/pkg/kafka"
	applogger "ModelVault/pkg/logger"
	"ModelVault/pkg/util"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "path to config file")
		date       = flag.String("date", "", "day to check, YYYY-MM-DD (default: yesterday)")
		report     = flag.String("report", "", "print monthly report instead, YYYY-MM")
		dryRun     = flag.Bool("dry-run", false, "classify only; skip storage and alert publication")
	)
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	source, err := costwatch.NewExplorerSource(ctx, cfg.Costs.Region, cfg.Costs.ProjectTag)
	if err != nil {
		log.Fatalf("cost source: %v", err)
	}

	opts := []costwatch.ServiceOption{costwatch.WithServiceLogger(logger)}

	if !*dryRun && cfg.ClickHouse.Host != "" {
		chClient, err := clickhouse.NewClient(
			clickhouse.WithHost(cfg.ClickHouse.Host),
			clickhouse.WithPort(cfg.ClickHouse.Port),
			clickhouse.WithDatabase(cfg.ClickHouse.Database),
			clickhouse.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			clickhouse.WithHTTP(cfg.ClickHouse.UseHTTP),
			clickhouse.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		)
		if err != nil {
			log.Fatalf("clickhouse: %v", err)
		}
		defer chClient.Close()
		if err := chClient.InitSchema(ctx, repoimpl.CostSchema); err != nil {
			log.Fatalf("clickhouse schema: %v", err)
		}
		opts = append(opts, costwatch.WithStore(repoimpl.NewClickHouseCostStore(chClient)))
	}

	if !*dryRun && len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.AlertTopic != "" {
		producer, err := kafka.NewProducer(
			kafka.WithBrokers(cfg.Kafka.Brokers),
			kafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			kafka.WithCompression(cfg.Kafka.Compression),
			kafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
			kafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
		)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		publisher := repoimpl.NewKafkaAlertPublisher(producer, cfg.Kafka.AlertTopic)
		defer publisher.Close()
		opts = append(opts, costwatch.WithPublisher(publisher))
	}

	limits := costwatch.Thresholds{
		Warning:  cfg.Costs.WarningUSD,
		Critical: cfg.Costs.CriticalUSD,
	}
	service := costwatch.NewService(source, limits, opts...)

	if *report != "" {
		runReport(ctx, service, *report)
		return
	}

	day := util.ParseDayDefault(*date, util.Yesterday())

	var (
		snap  *models.CostSnapshot
		alert *models.CostAlert
	)
	if *dryRun {
		snap, alert, err = service.Daily(ctx, day)
	} else {
		snap, alert, err = service.CheckDaily(ctx, day)
	}
	if err != nil {
		log.Fatalf("cost check: %v", err)
	}

	printJSON(struct {
		Snapshot *models.CostSnapshot `json:"snapshot"`
		Alert    *models.CostAlert    `json:"alert"`
	}{snap, alert})

	if alert.Level == models.AlertCritical {
		os.Exit(1)
	}
}

func runReport(ctx context.Context, service *costwatch.Service, month string) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		log.Fatalf("--report must be YYYY-MM: %v", err)
	}
	rep, err := service.Monthly(ctx, t.Year(), int(t.Month()))
	if err != nil {
		log.Fatalf("monthly report: %v", err)
	}
	printJSON(rep)
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode output: %v\n", err)
		os.Exit(1)
	}
}
