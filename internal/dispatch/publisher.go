package dispatch

import (
	"context"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	pkgerrors "github.com/tabish-uharvest/uharvest-vendingm-service/pkg/errors"
)

const defaultPublishTimeout = 10 * time.Second

// Publisher hands a rendered instruction to the actuator channel.
type Publisher interface {
	Publish(ctx context.Context, instruction string) error
}

// NewPublisher wraps a Pub/Sub topic publisher. Exactly one publish
// attempt is made per instruction; retries and queueing of failed
// dispensing are out of scope.
func NewPublisher(pub *gcppubsub.Publisher) (Publisher, error) {
	if pub == nil {
		return nil, fmt.Errorf("pubsub publisher is required")
	}
	return &topicPublisher{pub: pub}, nil
}

type topicPublisher struct {
	pub *gcppubsub.Publisher
}

func (p *topicPublisher) Publish(ctx context.Context, instruction string) error {
	msg := &gcppubsub.Message{
		Data: []byte(instruction),
		Attributes: map[string]string{
			"content_type": "text/plain",
			"published_at": time.Now().UTC().Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()

	result := p.pub.Publish(publishCtx, msg)
	if _, err := result.Get(publishCtx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish dispatch instruction")
	}
	return nil
}
