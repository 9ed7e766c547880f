package kafka

import (
	"AmineForum/internal/api/config"
	"AmineForum/internal/pkg/consts"
	"AmineForum/internal/pkg/event"
	"AmineForum/internal/pkg/logger"
	"context"
	log "log/slog"
	"sync"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// Forwarder 把进程内事件异步投递到 Kafka，投递失败只记日志
type Forwarder struct {
	producer sarama.AsyncProducer
	topic    string
	bus      *event.Bus
	subID    uint64
	wg       sync.WaitGroup
	once     sync.Once
}

func NewForwarder(cfg config.KafkaConfig, bus *event.Bus) (*Forwarder, error) {
	producer, err := sarama.NewAsyncProducer(cfg.Brokers, newSaramaConfig(cfg))
	if err != nil {
		return nil, err
	}
	return newForwarder(producer, cfg.Topic, bus), nil
}

func newForwarder(producer sarama.AsyncProducer, topic string, bus *event.Bus) *Forwarder {
	f := &Forwarder{producer: producer, topic: topic, bus: bus}
	f.wg.Add(1)
	go f.drain()
	f.subID = bus.Subscribe(consts.TopicAll, f.forward)
	return f
}

func (f *Forwarder) forward(ctx context.Context, evt event.Event) {
	value, err := json.Marshal(evt)
	if err != nil {
		log.ErrorContext(ctx, "marshal event error", "topic", evt.Topic, "err", err)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: f.topic,
		Key:   sarama.StringEncoder(evt.Key),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event"), Value: []byte(evt.Topic)},
		},
	}
	if traceID := logger.TraceID(ctx); traceID != "" {
		msg.Headers = append(msg.Headers, sarama.RecordHeader{Key: []byte(logger.TraceIDKey), Value: []byte(traceID)})
	}
	// 总线同步分发，broker 卡住时丢弃而不是阻塞发布方
	select {
	case f.producer.Input() <- msg:
	default:
		log.WarnContext(ctx, "kafka producer busy, event dropped", "topic", evt.Topic, "key", evt.Key)
	}
}

func (f *Forwarder) drain() {
	defer f.wg.Done()
	for err := range f.producer.Errors() {
		log.Error("kafka produce error", "topic", err.Msg.Topic, "err", err.Err)
	}
}

// Close 先退订再关闭 producer，等待未投递的消息刷出
func (f *Forwarder) Close() error {
	f.once.Do(func() {
		f.bus.Unsubscribe(f.subID)
		f.producer.AsyncClose()
		f.wg.Wait()
		log.Info("Kafka 事件转发已停止")
	})
	return nil
}
