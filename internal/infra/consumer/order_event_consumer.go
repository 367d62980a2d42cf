package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/nodeforge1/nodeforge-website/internal/event"
)

var ErrConsumerClosed = errors.New("consumer closed")

// KafkaReader interface for testing
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderPaidHandler 處理付款完成事件, 回傳error時不commit, 事件會被重讀
type OrderPaidHandler interface {
	HandleOrderPaid(ctx context.Context, evt event.OrderPaidEvent) error
}

// OrderEventConsumer 讀取order paid topic並觸發確認信
// fetch -> handle -> commit, 一次一筆
type OrderEventConsumer struct {
	reader    KafkaReader
	handler   OrderPaidHandler
	logger    *zerolog.Logger
	closeOnce sync.Once
	closeChan chan struct{}
}

func NewOrderEventConsumer(brokers []string, topic, groupID string, handler OrderPaidHandler, logger *zerolog.Logger) *OrderEventConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	return newOrderEventConsumer(reader, handler, logger)
}

// for testing
func newOrderEventConsumer(reader KafkaReader, handler OrderPaidHandler, logger *zerolog.Logger) *OrderEventConsumer {
	return &OrderEventConsumer{
		reader:    reader,
		handler:   handler,
		logger:    logger,
		closeChan: make(chan struct{}),
	}
}

// Start blocking, 由caller開goroutine
// ctx取消或Stop()後結束
func (c *OrderEventConsumer) Start(ctx context.Context) error {
	for {
		select {
		case <-c.closeChan:
			return ErrConsumerClosed
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return err
			}
			c.logger.Error().Err(err).Msg("fetch order event failed")
			continue
		}

		var evt event.OrderPaidEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			// 格式錯誤的訊息重讀也不會成功, 記log後commit跳過
			c.logger.Error().Err(err).Str("key", string(msg.Key)).Msg("malformed order event, skipping")
			c.commit(ctx, msg)
			continue
		}

		if err := c.handler.HandleOrderPaid(ctx, evt); err != nil {
			c.logger.Error().Err(err).Str("order_ref", evt.OrderRef).Msg("handle order paid event failed")
			continue
		}

		c.commit(ctx, msg)
	}
}

func (c *OrderEventConsumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error().Err(err).Msg("commit order event failed")
	}
}

func (c *OrderEventConsumer) Stop() {
	c.closeOnce.Do(func() {
		close(c.closeChan)
		c.reader.Close()
	})
}
