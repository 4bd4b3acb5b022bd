package broker

import (
	"context"

	"github.com/wb-go/wbf/retry"
)

// Message is a consumed record. Topic, Partition and Offset identify it for
// Commit.
type Message struct {
	Key       []byte
	Value     []byte
	Topic     string
	Partition int
	Offset    int64
}

// Consumer delivers messages through Start. Start closes out when the
// stream ends, whether ctx is done or the broker gave up.
type Consumer interface {
	Commit(ctx context.Context, msg *Message) error
	Start(ctx context.Context, out chan<- *Message, strategy retry.Strategy)
	Close() error
}
