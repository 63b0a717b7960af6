package costwatch

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"ModelVault/internal/domain/models"
	"ModelVault/pkg/util"
)

// ExplorerSource fetches daily spend from the AWS Cost Explorer API.
// One API call per day queried; no billing math happens here.
type ExplorerSource struct {
	client     *costexplorer.Client
	projectTag string
}

// NewExplorerSource creates a Cost Explorer backed source. When projectTag is
// non-empty, results are filtered to resources tagged Project=<projectTag>.
func NewExplorerSource(ctx context.Context, region, projectTag string) (*ExplorerSource, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	return &ExplorerSource{
		client:     costexplorer.NewFromConfig(awsCfg),
		projectTag: projectTag,
	}, nil
}

// DailyCosts returns one day's spend grouped by service, sorted by amount
// descending.
func (s *ExplorerSource) DailyCosts(ctx context.Context, day time.Time) (*models.CostSnapshot, error) {
	start := day.Format(util.DayLayout)
	end := day.AddDate(0, 0, 1).Format(util.DayLayout)

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(start),
			End:   aws.String(end),
		},
		Granularity: cetypes.GranularityDaily,
		Metrics:     []string{"UnblendedCost"},
		GroupBy: []cetypes.GroupDefinition{
			{Type: cetypes.GroupDefinitionTypeDimension, Key: aws.String("SERVICE")},
		},
	}
	if s.projectTag != "" {
		input.Filter = &cetypes.Expression{
			Tags: &cetypes.TagValues{
				Key:    aws.String("Project"),
				Values: []string{s.projectTag},
			},
		}
	}

	out, err := s.client.GetCostAndUsage(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("cost explorer query %s: %w", start, err)
	}

	snap := &models.CostSnapshot{Date: start, FetchedAt: time.Now()}
	for _, result := range out.ResultsByTime {
		for _, group := range result.Groups {
			if len(group.Keys) == 0 {
				continue
			}
			metric, ok := group.Metrics["UnblendedCost"]
			if !ok || metric.Amount == nil {
				continue
			}
			amount, err := strconv.ParseFloat(aws.ToString(metric.Amount), 64)
			if err != nil {
				return nil, fmt.Errorf("parse cost amount %q: %w", aws.ToString(metric.Amount), err)
			}
			snap.Services = append(snap.Services, models.ServiceCost{
				Service: shortServiceName(group.Keys[0]),
				Amount:  amount,
			})
			snap.Total += amount
		}
	}

	sort.Slice(snap.Services, func(i, j int) bool {
		return snap.Services[i].Amount > snap.Services[j].Amount
	})
	return snap, nil
}

func shortServiceName(s string) string {
	s = strings.TrimPrefix(s, "Amazon ")
	s = strings.TrimPrefix(s, "AWS ")
	return s
}
