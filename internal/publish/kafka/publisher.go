package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/mcoot/courtside/internal/publish"
)

// DefaultTopic receives game events and snapshots
const DefaultTopic = "game-events"

// Envelope is the message value written for every update
type Envelope struct {
	Type      string      `json:"type"`
	GameID    string      `json:"game_id"`
	Version   int64       `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Publisher sends game updates to a Kafka topic, keyed by game id so one
// game's messages stay ordered within a partition
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewProducer connects a synchronous producer to the brokers
func NewProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("connecting kafka producer: %w", err)
	}
	return producer, nil
}

// New wraps an existing producer
func New(producer sarama.SyncProducer, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{
		producer: producer,
		topic:    topic,
	}
}

// Publish sends one message per event and one for the snapshot, in one batch
func (p *Publisher) Publish(ctx context.Context, update publish.Update) error {
	gameID := string(update.Game.ID)
	msgs := make([]*sarama.ProducerMessage, 0, len(update.Events)+1)

	for _, e := range update.Events {
		msg, err := p.message(gameID, Envelope{
			Type:      publish.TypeGameEvent,
			GameID:    gameID,
			Version:   update.Game.Version,
			Timestamp: e.CreatedAt,
			Data:      e,
		})
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	msg, err := p.message(gameID, Envelope{
		Type:      publish.TypeGameUpdate,
		GameID:    gameID,
		Version:   update.Game.Version,
		Timestamp: update.Game.UpdatedAt,
		Data:      update.View(),
	})
	if err != nil {
		return err
	}
	msgs = append(msgs, msg)

	if err := ctx.Err(); err != nil {
		return err
	}
	return p.producer.SendMessages(msgs)
}

func (p *Publisher) message(key string, env Envelope) (*sarama.ProducerMessage, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", env.Type, err)
	}
	return &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}, nil
}

// Close closes the producer
func (p *Publisher) Close() error {
	return p.producer.Close()
}
