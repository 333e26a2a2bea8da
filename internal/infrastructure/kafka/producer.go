package kafka

import (
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

const deliveryTimeout = 3 * time.Second

type KafkaProducer struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaProducer(bootstrapServer, topic string) (*KafkaProducer, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": bootstrapServer,
		"acks":              "all",
	})
	if err != nil {
		return nil, fmt.Errorf("error creating producer: %w", err)
	}

	return &KafkaProducer{
		producer: producer,
		topic:    topic,
	}, nil
}

// Send produces one message and waits for its delivery report. Records of
// the same source share a key and therefore a partition, which keeps them
// in file order.
func (p *KafkaProducer) Send(key, message string) error {
	deliveryChan := make(chan kafka.Event, 1)

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &p.topic,
			Partition: kafka.PartitionAny,
		},
		Value: []byte(message),
	}
	if key != "" {
		msg.Key = []byte(key)
	}

	if err := p.producer.Produce(msg, deliveryChan); err != nil {
		return err
	}

	select {
	case e := <-deliveryChan:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event %v", e)
		}
		if m.TopicPartition.Error != nil {
			return m.TopicPartition.Error
		}
	case <-time.After(deliveryTimeout):
		return kafka.NewError(kafka.ErrTimedOut, "delivery timeout", false)
	}

	return nil
}

func (p *KafkaProducer) Close() {
	p.producer.Flush(15 * 1000)
	p.producer.Close()
}
