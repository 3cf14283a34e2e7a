package snapshot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/angelmondragon/pulsecheck-backend/internal/detection"
	"github.com/angelmondragon/pulsecheck-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/pulsecheck-backend/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// BigQuerySource builds the snapshot from the warehouse's daily facts table,
// for deployments where the mart builder already materialized aggregates. The
// facts table carries no per-channel breakdown, so the channel CAC rule stays
// quiet on this source.
type BigQuerySource struct {
	client            *bigquery.Client
	dataset           string
	table             string
	baselineRetention float64
	now               func() time.Time
}

// NewBigQuerySource creates a BigQuery-backed snapshot source.
func NewBigQuerySource(ctx context.Context, gcp config.GCPConfig, cfg config.BigQueryConfig, pipeline config.PipelineConfig) (*BigQuerySource, error) {
	if strings.TrimSpace(gcp.ProjectID) == "" {
		return nil, fmt.Errorf("gcp project id is required")
	}

	var opts []option.ClientOption
	if gcp.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	}

	client, err := bigquery.NewClient(ctx, gcp.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating bigquery client: %w", err)
	}

	return &BigQuerySource{
		client:            client,
		dataset:           cfg.Dataset,
		table:             cfg.DailyFactsTable,
		baselineRetention: pipeline.BaselineRetention,
		now:               func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close releases the underlying client.
func (s *BigQuerySource) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

type dailyFact struct {
	Day              time.Time `bigquery:"day"`
	Revenue          float64   `bigquery:"revenue"`
	NetRevenue       float64   `bigquery:"net_revenue"`
	Spend            float64   `bigquery:"spend"`
	Orders           int64     `bigquery:"orders"`
	NewCustomers     int64     `bigquery:"new_customers"`
	Margin           float64   `bigquery:"contribution_margin"`
	RetentionD30     float64   `bigquery:"retention_d30"`
	Sessions         int64     `bigquery:"sessions"`
	ProductViews     int64     `bigquery:"product_views"`
	CartAdditions    int64     `bigquery:"cart_additions"`
	CheckoutsStarted int64     `bigquery:"checkouts_started"`
	Purchases        int64     `bigquery:"purchases"`
}

func (s *BigQuerySource) Build(ctx context.Context) (detection.MetricsSnapshot, error) {
	var snapshot detection.MetricsSnapshot

	query := s.client.Query(fmt.Sprintf(`
SELECT
  TIMESTAMP(date) AS day,
  revenue, net_revenue, spend, orders, new_customers,
  contribution_margin, retention_d30,
  sessions, product_views, cart_additions, checkouts_started, purchases
FROM `+"`%s.%s`"+`
WHERE date >= DATE_SUB(CURRENT_DATE(), INTERVAL 14 DAY)
ORDER BY date`, s.dataset, s.table))

	it, err := query.Read(ctx)
	if err != nil {
		return snapshot, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "querying daily facts")
	}

	now := s.now()
	split := now.Add(-window)
	var currentTraffic, previousTraffic trafficAggregates
	var latestRetentionDay time.Time

	for {
		var fact dailyFact
		err := it.Next(&fact)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return snapshot, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading daily facts")
		}

		if fact.Day.Before(split) {
			snapshot.PreviousRevenue += fact.Revenue
			snapshot.PreviousNetRevenue += fact.NetRevenue
			snapshot.PreviousSpend += fact.Spend
			snapshot.PreviousOrders += fact.Orders
			snapshot.PreviousNewCustomers += fact.NewCustomers
			snapshot.PreviousContributionMargin += fact.Margin
			snapshot.PreviousSessions += fact.Sessions
			accumulate(&previousTraffic, fact)
			continue
		}

		snapshot.CurrentRevenue += fact.Revenue
		snapshot.CurrentNetRevenue += fact.NetRevenue
		snapshot.CurrentSpend += fact.Spend
		snapshot.CurrentOrders += fact.Orders
		snapshot.CurrentNewCustomers += fact.NewCustomers
		snapshot.CurrentContributionMargin += fact.Margin
		snapshot.CurrentSessions += fact.Sessions
		accumulate(&currentTraffic, fact)

		if fact.RetentionD30 > 0 && fact.Day.After(latestRetentionDay) {
			latestRetentionDay = fact.Day
			snapshot.CurrentRetentionD30 = fact.RetentionD30
		}
	}

	snapshot.CurrentFunnel = funnelRates(currentTraffic)
	snapshot.PreviousFunnel = funnelRates(previousTraffic)
	snapshot.BaselineRetentionD30 = s.baselineRetention
	return snapshot, nil
}

func accumulate(agg *trafficAggregates, fact dailyFact) {
	agg.Sessions += fact.Sessions
	agg.ProductViews += fact.ProductViews
	agg.CartAdditions += fact.CartAdditions
	agg.CheckoutsStarted += fact.CheckoutsStarted
	agg.Purchases += fact.Purchases
}
