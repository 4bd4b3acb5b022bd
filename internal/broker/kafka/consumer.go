package kafka

import (
	"context"

	"watermark-generator/internal/broker"
	"watermark-generator/internal/config"

	kafka "github.com/segmentio/kafka-go"
	wbkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
)

type ConsumerClient struct {
	consumer *wbkafka.Consumer
}

func NewConsumerClient(cfg *config.Config) *ConsumerClient {
	return &ConsumerClient{
		consumer: wbkafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.JobsTopic, cfg.Kafka.GroupID),
	}
}

func (c *ConsumerClient) Commit(ctx context.Context, msg *broker.Message) error {
	return c.consumer.Commit(ctx, toKafka(msg))
}

// Start feeds out until ctx is done or the underlying stream ends, then
// closes out. The stream ends early when fetching runs out of retries.
func (c *ConsumerClient) Start(ctx context.Context, out chan<- *broker.Message, strategy retry.Strategy) {
	raw := make(chan kafka.Message, cap(out))
	go c.consumer.StartConsuming(ctx, raw, strategy)
	go forward(ctx, raw, out)
}

func forward(ctx context.Context, raw <-chan kafka.Message, out chan<- *broker.Message) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-raw:
			if !ok {
				return
			}
			select {
			case out <- fromKafka(msg):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (c *ConsumerClient) Close() error {
	return c.consumer.Close()
}

func fromKafka(msg kafka.Message) *broker.Message {
	return &broker.Message{
		Key:       msg.Key,
		Value:     msg.Value,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
	}
}

func toKafka(msg *broker.Message) kafka.Message {
	return kafka.Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       msg.Key,
		Value:     msg.Value,
	}
}
