package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/angelmondragon/pulsecheck-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pulsecheck-backend/pkg/errors"
	"github.com/angelmondragon/pulsecheck-backend/pkg/logger"
	"github.com/angelmondragon/pulsecheck-backend/pkg/pubsub"
	"go.uber.org/multierr"
)

const defaultPublishTimeout = 15 * time.Second

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

// Notifier announces freshly raised opportunities on the opportunities topic
// so downstream narrative and notification consumers can pick them up.
type Notifier struct {
	pub  publisher
	logg *logger.Logger
}

// NewNotifier wires the notifier onto the configured opportunities topic.
func NewNotifier(client *pubsub.Client, logg *logger.Logger) (*Notifier, error) {
	if client == nil {
		return nil, errors.New("pubsub client required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	pub := newGCPPublisher(client.OpportunitiesPublisher())
	if pub == nil {
		return nil, errors.New("opportunities publisher not configured")
	}
	return &Notifier{pub: pub, logg: logg}, nil
}

// OpportunitiesRaised publishes one message per stored opportunity. A publish
// failure for one message does not stop the rest; all failures are combined.
func (n *Notifier) OpportunitiesRaised(ctx context.Context, rows []models.Opportunity) error {
	var errs error
	for _, row := range rows {
		if err := n.publishOne(ctx, row); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("opportunity %s: %w", row.ID, err))
		}
	}
	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "publishing opportunities")
	}
	if len(rows) > 0 {
		fields := map[string]any{"published": len(rows)}
		n.logg.Info(n.logg.WithFields(ctx, fields), "opportunity events published")
	}
	return nil
}

func (n *Notifier) publishOne(ctx context.Context, row models.Opportunity) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return err
	}

	msg := &gcppubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"opportunity_id": row.ID.String(),
			"type":           string(row.Type),
			"priority":       strconv.Itoa(row.Priority),
			"raised_at":      row.RaisedAt.Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()

	result := n.pub.Publish(publishCtx, msg)
	if result == nil {
		return errors.New("publisher returned nil result")
	}
	_, err = result.Get(publishCtx)
	return err
}

func newGCPPublisher(p *gcppubsub.Publisher) publisher {
	if p == nil {
		return nil
	}
	return &gcpPublisher{Publisher: p}
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return p.Publisher.Publish(ctx, msg)
}
