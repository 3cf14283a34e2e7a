package staging

import (
	"fmt"

	"github.com/angelmondragon/pulsecheck-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

var microsPerUnit = decimal.NewFromInt(1_000_000)

// normalizeSpend reconciles one raw ad-spend record into the canonical staging
// shape, keyed by (date, source, campaign).
func normalizeSpend(record models.RawRecord) (*models.StagingSpend, error) {
	p := payload(record.Payload)

	date, err := p.timeField("date", "date_start", "segments.date", "day")
	if err != nil {
		return nil, fmt.Errorf("spend record %s: %w", record.ID, err)
	}

	campaignID := p.stringField("campaign_id", "campaign.id", "campaignId")
	if campaignID == "" {
		return nil, fmt.Errorf("spend record %s has no campaign id", record.ID)
	}

	// The graph-query shape reports cost in micros.
	spend := p.decimalField("spend", "amount_spent", "cost")
	if micros, ok := p.first("metrics.costMicros", "cost_micros"); ok {
		spend = decimalValue(micros).Div(microsPerUnit)
	}

	currency := p.stringField("currency", "account_currency_code", "customer.currencyCode")
	if currency == "" {
		currency = "USD"
	}

	return &models.StagingSpend{
		Date:         dayOf(date),
		Source:       record.Source,
		CampaignID:   campaignID,
		CampaignName: p.stringField("campaign_name", "campaign.name", "campaignName"),
		Spend:        spend,
		Impressions:  p.intField("impressions", "metrics.impressions"),
		Clicks:       p.intField("clicks", "metrics.clicks"),
		Currency:     currency,
	}, nil
}
