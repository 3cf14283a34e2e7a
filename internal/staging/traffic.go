package staging

import (
	"fmt"

	"github.com/angelmondragon/pulsecheck-backend/internal/attribution"
	"github.com/angelmondragon/pulsecheck-backend/pkg/db/models"
	"github.com/angelmondragon/pulsecheck-backend/pkg/enums"
)

// normalizeTraffic reconciles one raw traffic record into the canonical
// staging shape, keyed by (date, source, channel).
func normalizeTraffic(record models.RawRecord) (*models.StagingTraffic, error) {
	p := payload(record.Payload)

	date, err := p.timeField("date", "dimensions.date", "day")
	if err != nil {
		return nil, fmt.Errorf("traffic record %s: %w", record.ID, err)
	}

	return &models.StagingTraffic{
		Date:             dayOf(date),
		Source:           record.Source,
		ChannelRaw:       resolveTrafficChannel(p),
		Sessions:         p.intField("sessions", "metrics.sessions", "visits"),
		ProductViews:     p.intField("product_views", "metrics.itemViews", "pdp_views"),
		CartAdditions:    p.intField("cart_additions", "metrics.addToCarts", "add_to_carts"),
		CheckoutsStarted: p.intField("checkouts_started", "metrics.checkouts", "begin_checkout"),
		Purchases:        p.intField("purchases", "metrics.transactions", "conversions"),
	}, nil
}

func resolveTrafficChannel(p payload) enums.Channel {
	if explicit := p.stringField("channel"); explicit != "" {
		if channel, err := enums.ParseChannel(explicit); err == nil {
			return channel
		}
	}
	if label := p.stringField("channel_group", "dimensions.sessionDefaultChannelGroup", "channelGrouping"); label != "" {
		return attribution.ResolveChannelGroup(label)
	}
	return attribution.Resolve(attribution.Input{
		UTMSource: p.stringField("utm_source", "dimensions.sessionSource"),
		UTMMedium: p.stringField("utm_medium", "dimensions.sessionMedium"),
	})
}
