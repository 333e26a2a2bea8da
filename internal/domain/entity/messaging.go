package entity

// MessageProducer sends encoded records to a topic or channel.
// The key is used for partitioning and may be empty.
type MessageProducer interface {
	Send(key, message string) error
	Close()
}

type MessageConsumer interface {
	Messages() <-chan string
	Close()
}
