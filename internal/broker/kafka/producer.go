package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"watermark-generator/internal/config"
	"watermark-generator/internal/domain"

	wbkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
)

type ProducerClient struct {
	producer *wbkafka.Producer
	retries  retry.Strategy
}

func NewProducerClient(cfg *config.Config) *ProducerClient {
	return &ProducerClient{
		producer: wbkafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.JobsTopic),
		retries:  cfg.DefaultRetryStrategy(),
	}
}

func (p *ProducerClient) Send(ctx context.Context, strategy retry.Strategy, key, value []byte) error {
	return p.producer.SendWithRetry(ctx, strategy, key, value)
}

// SendTask publishes task keyed by its job ID.
func (p *ProducerClient) SendTask(ctx context.Context, task *domain.RenderTask) error {
	value, err := EncodeTask(task)
	if err != nil {
		return err
	}
	return p.Send(ctx, p.retries, []byte(task.JobID), value)
}

func (p *ProducerClient) Close() error {
	return p.producer.Close()
}

func EncodeTask(task *domain.RenderTask) ([]byte, error) {
	value, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task %s: %w", task.JobID, err)
	}
	return value, nil
}

func DecodeTask(value []byte) (*domain.RenderTask, error) {
	var task domain.RenderTask
	if err := json.Unmarshal(value, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	if task.JobID == "" {
		return nil, errors.New("task without job id")
	}
	return &task, nil
}
