package events

import (
	"encoding/json"
	"log"
	"os"
	"strings"

	"github.com/IBM/sarama"
)

// KafkaPublisher mirrors hub events onto a Kafka topic so that other
// services can observe pipeline progress without a websocket connection.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	detach   func()
}

// NewKafkaPublisherFromEnv starts a publisher when KAFKA_BROKERS is set.
// Optional: KAFKA_EVENTS_TOPIC (default "reelscript.events"). Returns nil
// when Kafka is not configured; the caller skips mirroring in that case.
func NewKafkaPublisherFromEnv(hub *Hub) (*KafkaPublisher, error) {
	brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))
	if brokers == "" {
		return nil, nil
	}

	topic := strings.TrimSpace(os.Getenv("KAFKA_EVENTS_TOPIC"))
	if topic == "" {
		topic = "reelscript.events"
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal

	producer, err := sarama.NewSyncProducer(strings.Split(brokers, ","), cfg)
	if err != nil {
		return nil, err
	}

	p := &KafkaPublisher{producer: producer, topic: topic}

	ch, detach := hub.Subscribe()
	p.detach = detach
	go p.run(ch)

	return p, nil
}

func (p *KafkaPublisher) run(ch <-chan Event) {
	for event := range ch {
		b, err := json.Marshal(event)
		if err != nil {
			continue
		}
		_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(event.Type),
			Value: sarama.ByteEncoder(b),
		})
		if err != nil {
			// Mirroring is best-effort; the pipeline never depends on it.
			log.Printf("[Kafka] publish failed: %v", err)
		}
	}
}

// Close detaches from the hub and shuts the producer down.
func (p *KafkaPublisher) Close() error {
	if p == nil {
		return nil
	}
	if p.detach != nil {
		p.detach()
	}
	return p.producer.Close()
}
