package staging

import (
	"fmt"

	"github.com/angelmondragon/pulsecheck-backend/pkg/db/models"
)

// normalizeEmail reconciles one raw email-campaign record into the canonical
// staging shape, keyed by (date, source, campaign).
func normalizeEmail(record models.RawRecord) (*models.StagingEmail, error) {
	p := payload(record.Payload)

	date, err := p.timeField("date", "send_time", "sent_at", "day")
	if err != nil {
		return nil, fmt.Errorf("email record %s: %w", record.ID, err)
	}

	campaignID := p.stringField("campaign_id", "id")
	if campaignID == "" {
		return nil, fmt.Errorf("email record %s has no campaign id", record.ID)
	}

	return &models.StagingEmail{
		Date:         dayOf(date),
		Source:       record.Source,
		CampaignID:   campaignID,
		CampaignName: p.stringField("campaign_name", "name", "settings.subject_line", "subject"),
		Sends:        p.intField("sends", "emails_sent", "statistics.recipients"),
		Opens:        p.intField("opens", "unique_opens", "statistics.opens"),
		Clicks:       p.intField("clicks", "unique_clicks", "statistics.clicks"),
		Revenue:      p.decimalField("revenue", "attributed_revenue", "statistics.conversionValue"),
	}, nil
}
