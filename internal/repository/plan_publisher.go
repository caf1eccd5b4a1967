package repository

import (
	"context"

	"NeoFin/internal/domain/models"
	domrepo "NeoFin/internal/domain/repository"
	pkgkafka "NeoFin/pkg/kafka"
)

// KafkaPlanPublisher writes plan events to a topic, keyed by risk profile
// so one profile's events stay ordered on a partition.
type KafkaPlanPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPlanPublisher(producer *pkgkafka.Producer, topic string) *KafkaPlanPublisher {
	return &KafkaPlanPublisher{producer: producer, topic: topic}
}

func (p *KafkaPlanPublisher) PublishPlan(ctx context.Context, ev models.PlanEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.Profile.Short()), ev)
}

func (p *KafkaPlanPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ domrepo.PlanPublisher = (*KafkaPlanPublisher)(nil)
