package memory

import "sync"

// NewPipe returns both ends of a buffered in-memory topic. It stands in for
// Kafka in tests and when USE_KAFKA is not set.
func NewPipe(buffer int) (*InMemoryProducer, *InMemoryConsumer) {
	ch := make(chan string, buffer)
	return &InMemoryProducer{ch: ch}, &InMemoryConsumer{ch: ch}
}

type InMemoryProducer struct {
	ch        chan string
	closeOnce sync.Once
}

func (p *InMemoryProducer) Send(_ string, message string) error {
	p.ch <- message
	return nil
}

// Close ends the topic; the consumer drains what is buffered and then sees
// its channel closed.
func (p *InMemoryProducer) Close() {
	p.closeOnce.Do(func() { close(p.ch) })
}

type InMemoryConsumer struct {
	ch <-chan string
}

func (c *InMemoryConsumer) Messages() <-chan string {
	return c.ch
}

func (c *InMemoryConsumer) Close() {}
