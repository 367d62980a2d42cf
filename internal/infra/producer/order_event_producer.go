package producer

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/nodeforge1/nodeforge-website/internal/event"
)

// Writer interface for testing
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type IOrderEventProducer interface {
	// PublishOrderPaid 發佈付款完成事件
	PublishOrderPaid(ctx context.Context, evt event.OrderPaidEvent) error
	Close() error
}

// 同步模式, 會block到訊息寫入
// 併發安全, 所有webhook handler共用同一個producer
type OrderEventProducer struct {
	writer Writer
	closed atomic.Bool // 避免重複呼叫Close() 旗標
}

func NewOrderEventProducer(brokers []string, topic string) *OrderEventProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,

		// 錯誤處理
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Printf("kafka producer error: "+msg, args...)
		}),
	}
	return &OrderEventProducer{writer: writer}
}

// NewOrderEventProducerWithWriter for testing
func NewOrderEventProducerWithWriter(writer Writer) *OrderEventProducer {
	return &OrderEventProducer{writer: writer}
}

// PublishOrderPaid key用orderRef, 同一筆訂單的事件落在同一個partition保序
func (p *OrderEventProducer) PublishOrderPaid(ctx context.Context, evt event.OrderPaidEvent) error {
	if p.closed.Load() {
		return nil
	}

	value, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.OrderRef),
		Value: value,
	})
}

func (p *OrderEventProducer) Close() error {
	if p.closed.CompareAndSwap(false, true) {
		return p.writer.Close()
	}
	return nil
}

var _ IOrderEventProducer = (*OrderEventProducer)(nil)
