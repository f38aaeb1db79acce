package kafka

import (
	"Applyhub/internal/api/config"
	"Applyhub/internal/repository"
	"context"
	"errors"
	log "log/slog"

	"github.com/IBM/sarama"
)

type consumer struct {
	name    string
	topic   string
	group   sarama.ConsumerGroup
	handler sarama.ConsumerGroupHandler
}

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	consumers []*consumer
}

// NewConsumerManager 构造函数
func NewConsumerManager(
	cfg *config.Config,
	contentRepo repository.ContentRepo,
	contentMetricRepo repository.ContentMetricRepo,
	invalidator analyticsInvalidator,
) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	specs := []struct {
		name    string
		topic   config.KafkaConsumerTopic
		handler sarama.ConsumerGroupHandler
	}{
		{"interaction", cfg.KafkaInteractionConsumer, NewInteractionHandler(contentRepo, contentMetricRepo)},
		{"engagement", cfg.KafkaEngagementConsumer, NewEngagementHandler(contentRepo, contentMetricRepo)},
		{"user_follows", cfg.KafkaFollowConsumer, NewFollowsHandler(invalidator)},
	}

	m := &ConsumerManager{}
	for _, spec := range specs {
		if spec.topic.Topic == "" {
			log.Warn("kafka consumer disabled, topic not configured", "consumer", spec.name)
			continue
		}
		group, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, spec.topic.GroupID, saramaCfg)
		if err != nil {
			m.close()
			return nil, err
		}
		m.consumers = append(m.consumers, &consumer{
			name:    spec.name,
			topic:   spec.topic.Topic,
			group:   group,
			handler: spec.handler,
		})
	}
	return m, nil
}

// Start 启动所有消费者，阻塞到 ctx 结束
func (m *ConsumerManager) Start(ctx context.Context) error {
	for _, c := range m.consumers {
		go func(c *consumer) {
			log.Info("kafka consumer started", "consumer", c.name, "topic", c.topic)
			for {
				if err := c.group.Consume(ctx, []string{c.topic}, c.handler); err != nil {
					if errors.Is(err, sarama.ErrClosedConsumerGroup) {
						return
					}
					log.Error("error from consumer", "consumer", c.name, "err", err)
				}
				if ctx.Err() != nil {
					return
				}
			}
		}(c)

		go func(c *consumer) {
			for err := range c.group.Errors() {
				log.Error("consumer group error", "consumer", c.name, "err", err)
			}
		}(c)
	}

	<-ctx.Done()
	log.Info("kafka manager shutting down...")
	m.close()
	return nil
}

func (m *ConsumerManager) close() {
	for _, c := range m.consumers {
		if err := c.group.Close(); err != nil {
			log.Error("failed to close consumer", "consumer", c.name, "err", err)
		}
	}
}
