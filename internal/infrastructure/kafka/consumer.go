package kafka

import (
	"fmt"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

const (
	messageBuffer       = 10000
	bufferHighWaterMark = 8000
	bufferLowWaterMark  = 2000
	commitBatchSize     = 1000
	commitInterval      = 5 * time.Second
)

// KafkaConsumer exposes a topic as a channel of message values. Offsets are
// committed in batches after messages are handed to the channel, and
// partitions are paused while the channel is close to full.
type KafkaConsumer struct {
	consumer   *kafka.Consumer
	logger     *zap.SugaredLogger
	messages   chan string
	done       chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
	paused     bool
	pauseMutex sync.Mutex
	commitChan chan kafka.TopicPartition
}

func NewKafkaConsumer(bootstrapServer, topic, groupID string, logger *zap.SugaredLogger) (*KafkaConsumer, error) {
	config := &kafka.ConfigMap{
		"bootstrap.servers":     bootstrapServer,
		"group.id":              groupID,
		"auto.offset.reset":     "earliest",
		"enable.auto.commit":    "false",
		"max.poll.interval.ms":  300000,
		"session.timeout.ms":    10000,
		"heartbeat.interval.ms": 3000,
	}

	consumer, err := kafka.NewConsumer(config)
	if err != nil {
		return nil, fmt.Errorf("error creating consumer: %w", err)
	}

	if err := consumer.Subscribe(topic, nil); err != nil {
		consumer.Close()
		return nil, fmt.Errorf("error subscribing to topic %s: %w", topic, err)
	}

	k := &KafkaConsumer{
		consumer:   consumer,
		logger:     logger,
		messages:   make(chan string, messageBuffer),
		done:       make(chan struct{}),
		commitChan: make(chan kafka.TopicPartition, messageBuffer),
	}

	k.wg.Add(3)
	go k.manageBackpressure()
	go k.consume()
	go k.commitWorker()
	return k, nil
}

func (c *KafkaConsumer) consume() {
	defer c.wg.Done()
	defer close(c.messages)

	for {
		select {
		case <-c.done:
			return
		default:
			ev := c.consumer.Poll(100)
			if ev == nil {
				continue
			}

			switch e := ev.(type) {
			case *kafka.Message:
				select {
				case c.messages <- string(e.Value):
				case <-c.done:
					return
				}
				select {
				case c.commitChan <- e.TopicPartition:
				case <-c.done:
					return
				}
			case kafka.Error:
				c.logger.Warnw("consumer error", "error", e)
			}
		}
	}
}

func (c *KafkaConsumer) manageBackpressure() {
	defer c.wg.Done()
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			bufferLevel := len(c.messages)
			if bufferLevel >= bufferHighWaterMark {
				c.setPaused(true)
			} else if bufferLevel <= bufferLowWaterMark {
				c.setPaused(false)
			}

		case <-c.done:
			return
		}
	}
}

func (c *KafkaConsumer) setPaused(pause bool) {
	c.pauseMutex.Lock()
	defer c.pauseMutex.Unlock()

	if c.paused == pause {
		return
	}

	partitions, err := c.consumer.Assignment()
	if err != nil {
		c.logger.Warnw("error getting partitions", "error", err)
		return
	}
	if len(partitions) == 0 {
		return
	}

	if pause {
		err = c.consumer.Pause(partitions)
	} else {
		err = c.consumer.Resume(partitions)
	}
	if err != nil {
		c.logger.Warnw("error changing partition state", "pause", pause, "error", err)
		return
	}
	c.paused = pause
}

func (c *KafkaConsumer) commitWorker() {
	defer c.wg.Done()
	var batch []kafka.TopicPartition
	ticker := time.NewTicker(commitInterval)
	defer ticker.Stop()

	for {
		select {
		case tp := <-c.commitChan:
			batch = append(batch, tp)
			if len(batch) >= commitBatchSize {
				c.commitBatch(batch)
				batch = nil
			}

		case <-ticker.C:
			if len(batch) > 0 {
				c.commitBatch(batch)
				batch = nil
			}

		case <-c.done:
			c.commitBatch(batch)
			return
		}
	}
}

func (c *KafkaConsumer) commitBatch(batch []kafka.TopicPartition) {
	if len(batch) == 0 {
		return
	}

	offsets := make([]kafka.TopicPartition, 0, len(batch))
	for _, tp := range batch {
		offsets = append(offsets, kafka.TopicPartition{
			Topic:     tp.Topic,
			Partition: tp.Partition,
			Offset:    tp.Offset + 1,
		})
	}

	if _, err := c.consumer.CommitOffsets(offsets); err != nil {
		c.logger.Warnw("commit error", "error", err)
	}
}

func (c *KafkaConsumer) Messages() <-chan string {
	return c.messages
}

func (c *KafkaConsumer) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.wg.Wait()
		c.consumer.Close()
	})
}
