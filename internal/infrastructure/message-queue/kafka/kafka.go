package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/alimikegami/point-of-sales/storefront-service/config"
	"github.com/alimikegami/point-of-sales/storefront-service/internal/dto"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

const (
	maxRetries   = 3
	writeTimeout = 5 * time.Second
)

func CreateKafkaProducer(ctx context.Context, config *config.Config) (*kafka.Conn, error) {
	conn, err := kafka.DialLeader(ctx, "tcp", config.KafkaConfig.BrokerAddress, config.KafkaConfig.BrokerTopic, config.KafkaConfig.BrokerPartition)
	if err != nil {
		return nil, fmt.Errorf("dialing kafka leader %s: %w", config.KafkaConfig.BrokerAddress, err)
	}

	return conn, nil
}

type messageWriter interface {
	SetWriteDeadline(t time.Time) error
	WriteMessages(msgs ...kafka.Message) (int, error)
	Close() error
}

// Publisher writes order lifecycle events to a single topic partition, keyed
// by order id. A conn that failed a write is dropped and the next attempt
// dials the partition leader again.
type Publisher struct {
	mu      sync.Mutex
	conn    messageWriter
	dial    func(ctx context.Context) (messageWriter, error)
	backoff time.Duration
}

// CreatePublisher starts from conn when it is not nil and dials lazily
// otherwise.
func CreatePublisher(conn *kafka.Conn, config *config.Config) *Publisher {
	p := &Publisher{
		dial: func(ctx context.Context) (messageWriter, error) {
			conn, err := CreateKafkaProducer(ctx, config)
			if err != nil {
				return nil, err
			}
			return conn, nil
		},
		backoff: time.Second,
	}
	if conn != nil {
		p.conn = conn
	}

	return p
}

func (p *Publisher) Publish(ctx context.Context, key string, msg dto.KafkaMessage) error {
	jsonMsg, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal Kafka message: %w", err)
	}

	for i := 0; i < maxRetries; i++ {
		err = p.write(ctx, jsonMsg, key)
		if err == nil {
			return nil
		}
		log.Ctx(ctx).Error().Err(err).Str("component", "Publish").Int("attempt", i+1).Msg("")

		select {
		case <-time.After(p.backoff * time.Duration(i+1)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("failed to write Kafka message after %d attempts: %w", maxRetries, err)
}

func (p *Publisher) write(ctx context.Context, msg []byte, key string) (err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		dialCtx, cancel := context.WithTimeout(ctx, writeTimeout)
		defer cancel()

		if p.conn, err = p.dial(dialCtx); err != nil {
			return err
		}
	}

	defer func() {
		if err != nil {
			p.drop(ctx)
		}
	}()

	if err = p.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}

	_, err = p.conn.WriteMessages(
		kafka.Message{
			Key:   []byte(key),
			Value: msg,
		},
	)
	return err
}

func (p *Publisher) drop(ctx context.Context) {
	if err := p.conn.Close(); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("component", "Publish").Msg("closing kafka conn")
	}
	p.conn = nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}
