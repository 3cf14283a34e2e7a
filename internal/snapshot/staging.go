package snapshot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/pulsecheck-backend/internal/detection"
	"github.com/angelmondragon/pulsecheck-backend/pkg/config"
	"github.com/angelmondragon/pulsecheck-backend/pkg/db"
	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pulsecheck-backend/pkg/errors"
	"gorm.io/gorm"
)

const window = 7 * 24 * time.Hour

// StagingSource builds the snapshot straight from the staging tables. The
// staging rows carry no cost-of-goods data, so contribution margin is
// estimated as a configured rate over net revenue.
type StagingSource struct {
	conn              *gorm.DB
	baselineRetention float64
	marginRate        float64
	now               func() time.Time
}

// NewStagingSource wires the staging-backed snapshot source.
func NewStagingSource(client *db.Client, cfg config.PipelineConfig) (*StagingSource, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &StagingSource{
		conn:              client.DB(),
		baselineRetention: cfg.BaselineRetention,
		marginRate:        cfg.MarginRate,
		now:               func() time.Time { return time.Now().UTC() },
	}, nil
}

type orderAggregates struct {
	Revenue      float64
	NetRevenue   float64
	Orders       int64
	NewCustomers int64
}

type trafficAggregates struct {
	Sessions         int64
	ProductViews     int64
	CartAdditions    int64
	CheckoutsStarted int64
	Purchases        int64
}

func (s *StagingSource) Build(ctx context.Context) (detection.MetricsSnapshot, error) {
	now := s.now()
	currentFrom, currentTo := now.Add(-window), now
	previousFrom, previousTo := now.Add(-2*window), now.Add(-window)

	var snapshot detection.MetricsSnapshot
	var err error

	current, err := s.orderWindow(ctx, currentFrom, currentTo)
	if err != nil {
		return snapshot, err
	}
	previous, err := s.orderWindow(ctx, previousFrom, previousTo)
	if err != nil {
		return snapshot, err
	}

	snapshot.CurrentRevenue = current.Revenue
	snapshot.PreviousRevenue = previous.Revenue
	snapshot.CurrentNetRevenue = current.NetRevenue
	snapshot.PreviousNetRevenue = previous.NetRevenue
	snapshot.CurrentOrders = current.Orders
	snapshot.PreviousOrders = previous.Orders
	snapshot.CurrentNewCustomers = current.NewCustomers
	snapshot.PreviousNewCustomers = previous.NewCustomers
	snapshot.CurrentContributionMargin = current.NetRevenue * s.marginRate
	snapshot.PreviousContributionMargin = previous.NetRevenue * s.marginRate

	snapshot.CurrentSpend, err = s.spendWindow(ctx, currentFrom, currentTo)
	if err != nil {
		return snapshot, err
	}
	snapshot.PreviousSpend, err = s.spendWindow(ctx, previousFrom, previousTo)
	if err != nil {
		return snapshot, err
	}

	currentTraffic, err := s.trafficWindow(ctx, currentFrom, currentTo)
	if err != nil {
		return snapshot, err
	}
	previousTraffic, err := s.trafficWindow(ctx, previousFrom, previousTo)
	if err != nil {
		return snapshot, err
	}
	snapshot.CurrentSessions = currentTraffic.Sessions
	snapshot.PreviousSessions = previousTraffic.Sessions
	snapshot.CurrentFunnel = funnelRates(currentTraffic)
	snapshot.PreviousFunnel = funnelRates(previousTraffic)

	snapshot.CurrentRetentionD30, err = s.retentionD30(ctx, now)
	if err != nil {
		return snapshot, err
	}
	snapshot.BaselineRetentionD30 = s.baselineRetention

	snapshot.Channels, err = s.channelWindows(ctx, currentFrom, currentTo, previousFrom, previousTo)
	if err != nil {
		return snapshot, err
	}

	return snapshot, nil
}

func (s *StagingSource) orderWindow(ctx context.Context, from, to time.Time) (orderAggregates, error) {
	var agg orderAggregates
	err := s.conn.WithContext(ctx).Raw(`
SELECT
  COALESCE(SUM(revenue_gross), 0) AS revenue,
  COALESCE(SUM(revenue_net), 0) AS net_revenue,
  COUNT(*) AS orders,
  COALESCE(SUM(CASE WHEN is_new_customer THEN 1 ELSE 0 END), 0) AS new_customers
FROM staging_orders
WHERE order_date >= ? AND order_date < ?`, from, to).Scan(&agg).Error
	if err != nil {
		return agg, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "aggregating orders")
	}
	return agg, nil
}

func (s *StagingSource) spendWindow(ctx context.Context, from, to time.Time) (float64, error) {
	var total float64
	err := s.conn.WithContext(ctx).Raw(`
SELECT COALESCE(SUM(spend), 0) FROM staging_spend WHERE date >= ? AND date < ?`, from, to).
		Scan(&total).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "aggregating spend")
	}
	return total, nil
}

func (s *StagingSource) trafficWindow(ctx context.Context, from, to time.Time) (trafficAggregates, error) {
	var agg trafficAggregates
	err := s.conn.WithContext(ctx).Raw(`
SELECT
  COALESCE(SUM(sessions), 0) AS sessions,
  COALESCE(SUM(product_views), 0) AS product_views,
  COALESCE(SUM(cart_additions), 0) AS cart_additions,
  COALESCE(SUM(checkouts_started), 0) AS checkouts_started,
  COALESCE(SUM(purchases), 0) AS purchases
FROM staging_traffic
WHERE date >= ? AND date < ?`, from, to).Scan(&agg).Error
	if err != nil {
		return agg, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "aggregating traffic")
	}
	return agg, nil
}

// retentionD30 measures the cohort whose first order landed 30 to 60 days ago
// and counts who came back within 30 days of that first order. The cohort is
// computed in Go from raw rows; SQL date aggregates scan differently across
// the postgres and sqlite drivers.
func (s *StagingSource) retentionD30(ctx context.Context, now time.Time) (float64, error) {
	cohortFrom := now.Add(-60 * 24 * time.Hour)
	cohortTo := now.Add(-30 * 24 * time.Hour)

	type orderRow struct {
		CustomerID string
		OrderDate  time.Time
	}
	var orders []orderRow
	err := s.conn.WithContext(ctx).Raw(`
SELECT customer_id, order_date FROM staging_orders WHERE customer_id <> ''`).
		Scan(&orders).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "loading customer orders")
	}

	firstByCustomer := make(map[string]time.Time)
	for _, order := range orders {
		first, seen := firstByCustomer[order.CustomerID]
		if !seen || order.OrderDate.Before(first) {
			firstByCustomer[order.CustomerID] = order.OrderDate
		}
	}

	cohort := make(map[string]time.Time)
	for customerID, first := range firstByCustomer {
		if !first.Before(cohortFrom) && first.Before(cohortTo) {
			cohort[customerID] = first
		}
	}
	if len(cohort) == 0 {
		return 0, nil
	}

	retained := make(map[string]bool)
	for _, order := range orders {
		first, ok := cohort[order.CustomerID]
		if !ok {
			continue
		}
		if order.OrderDate.After(first) && !order.OrderDate.After(first.Add(30*24*time.Hour)) {
			retained[order.CustomerID] = true
		}
	}
	return float64(len(retained)) / float64(len(cohort)), nil
}

func (s *StagingSource) channelWindows(ctx context.Context, currentFrom, currentTo, previousFrom, previousTo time.Time) ([]detection.ChannelMetrics, error) {
	currentSpend, err := s.channelSpend(ctx, currentFrom, currentTo)
	if err != nil {
		return nil, err
	}
	previousSpend, err := s.channelSpend(ctx, previousFrom, previousTo)
	if err != nil {
		return nil, err
	}
	currentNew, err := s.channelNewCustomers(ctx, currentFrom, currentTo)
	if err != nil {
		return nil, err
	}
	previousNew, err := s.channelNewCustomers(ctx, previousFrom, previousTo)
	if err != nil {
		return nil, err
	}

	seen := make(map[enums.Channel]bool)
	var channels []detection.ChannelMetrics
	for _, spend := range []map[enums.Channel]float64{currentSpend, previousSpend} {
		for channel := range spend {
			if seen[channel] {
				continue
			}
			seen[channel] = true
			channels = append(channels, detection.ChannelMetrics{
				Channel:              channel,
				CurrentSpend:         currentSpend[channel],
				PreviousSpend:        previousSpend[channel],
				CurrentNewCustomers:  currentNew[channel],
				PreviousNewCustomers: previousNew[channel],
			})
		}
	}
	return channels, nil
}

func (s *StagingSource) channelSpend(ctx context.Context, from, to time.Time) (map[enums.Channel]float64, error) {
	type row struct {
		Source string
		Total  float64
	}
	var rows []row
	err := s.conn.WithContext(ctx).Raw(`
SELECT source, COALESCE(SUM(spend), 0) AS total
FROM staging_spend
WHERE date >= ? AND date < ?
GROUP BY source`, from, to).Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "aggregating channel spend")
	}

	spend := make(map[enums.Channel]float64, len(rows))
	for _, r := range rows {
		spend[spendSourceChannel(r.Source)] += r.Total
	}
	return spend, nil
}

func (s *StagingSource) channelNewCustomers(ctx context.Context, from, to time.Time) (map[enums.Channel]int64, error) {
	type row struct {
		ChannelRaw string
		Total      int64
	}
	var rows []row
	err := s.conn.WithContext(ctx).Raw(`
SELECT channel_raw, COUNT(*) AS total
FROM staging_orders
WHERE is_new_customer AND order_date >= ? AND order_date < ?
GROUP BY channel_raw`, from, to).Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "aggregating channel acquisitions")
	}

	counts := make(map[enums.Channel]int64, len(rows))
	for _, r := range rows {
		counts[enums.Channel(r.ChannelRaw)] += r.Total
	}
	return counts, nil
}

// spendSourceChannel maps an ad platform's source name to a channel slug.
func spendSourceChannel(source string) enums.Channel {
	normalized := strings.ToLower(strings.TrimSpace(source))
	switch {
	case strings.Contains(normalized, "meta"), strings.Contains(normalized, "facebook"):
		return enums.ChannelMeta
	case strings.Contains(normalized, "google"):
		return enums.ChannelGoogle
	case strings.Contains(normalized, "klaviyo"), strings.Contains(normalized, "mailchimp"), strings.Contains(normalized, "email"):
		return enums.ChannelEmail
	default:
		return enums.ChannelOther
	}
}

func funnelRates(traffic trafficAggregates) detection.FunnelRates {
	return detection.FunnelRates{
		SessionToPDP:       ratio(traffic.ProductViews, traffic.Sessions),
		PDPToCart:          ratio(traffic.CartAdditions, traffic.ProductViews),
		CartToCheckout:     ratio(traffic.CheckoutsStarted, traffic.CartAdditions),
		CheckoutToPurchase: ratio(traffic.Purchases, traffic.CheckoutsStarted),
	}
}

func ratio(numerator, denominator int64) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}
