package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	applogger "NeoFin/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// MessageHandler handles the messages of one topic.
type MessageHandler interface {
	Topic() string
	Handle(ctx context.Context, payload []byte) error
}

// AfterHandleFunc observes every handled message (after retries).
type AfterHandleFunc func(topic string, km kafka.Message, elapsed time.Duration, err error)

type delivery struct {
	reader *kafka.Reader
	msg    kafka.Message
}

// Consumer reads registered topics in a consumer group and fans messages out
// to a fixed worker pool. Offsets are committed after handling, or after the
// message was parked on the DLQ.
type Consumer struct {
	cfg      *ConsumerConfig
	log      *applogger.Logger
	handlers map[string]MessageHandler
	readers  []*kafka.Reader
	dlq      *kafka.Writer
	after    AfterHandleFunc

	queue  chan delivery
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

func NewConsumer(l *applogger.Logger, opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		GroupID:     "neofin",
		WorkerCount: 1,
		BufferSize:  16,
		RetryMax:    3,
		BackoffMin:  100 * time.Millisecond,
		BackoffMax:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka consumer: brokers are required")
	}
	if l == nil {
		l = applogger.Nop()
	}

	c := &Consumer{
		cfg:      cfg,
		log:      l.With(applogger.String("component", "kafka-consumer")),
		handlers: make(map[string]MessageHandler),
		queue:    make(chan delivery, cfg.BufferSize),
	}
	if cfg.DLQTopic != "" {
		c.dlq = &kafka.Writer{Addr: kafka.TCP(cfg.Brokers...), Balancer: &kafka.LeastBytes{}, AllowAutoTopicCreation: true}
	}
	return c, nil
}

// RegisterHandler must be called before Start. A second handler for the same topic is ignored.
func (c *Consumer) RegisterHandler(h MessageHandler) {
	if _, dup := c.handlers[h.Topic()]; dup {
		c.log.Warn("handler already registered", applogger.String("topic", h.Topic()))
		return
	}
	c.handlers[h.Topic()] = h
}

// OnHandled installs an observer for handled messages.
func (c *Consumer) OnHandled(fn AfterHandleFunc) { c.after = fn }

func (c *Consumer) Start(ctx context.Context) error {
	if len(c.handlers) == 0 {
		return errors.New("kafka consumer: no handlers registered")
	}
	ctx, c.cancel = context.WithCancel(ctx)

	for i := 0; i < c.cfg.WorkerCount; i++ {
		c.wg.Add(1)
		go c.work(ctx)
	}

	var readersWG sync.WaitGroup
	for topic := range c.handlers {
		r := kafka.NewReader(kafka.ReaderConfig{
			Brokers: c.cfg.Brokers,
			GroupID: c.cfg.GroupID,
			Topic:   topic,
		})
		c.readers = append(c.readers, r)
		readersWG.Add(1)
		go func(r *kafka.Reader) {
			defer readersWG.Done()
			c.fetch(ctx, r)
		}(r)
	}

	// workers drain the queue once every reader has stopped
	go func() {
		readersWG.Wait()
		close(c.queue)
	}()

	c.log.Info("kafka consumer started",
		applogger.Int("workers", c.cfg.WorkerCount),
		applogger.Int("topics", len(c.handlers)),
	)
	return nil
}

func (c *Consumer) fetch(ctx context.Context, r *kafka.Reader) {
	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("fetch failed", applogger.String("topic", r.Config().Topic), applogger.Error(err))
			if !sleepCtx(ctx, time.Second) {
				return
			}
			continue
		}
		select {
		case c.queue <- delivery{reader: r, msg: msg}:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Consumer) work(ctx context.Context) {
	defer c.wg.Done()
	for d := range c.queue {
		c.process(ctx, d)
	}
}

func (c *Consumer) process(ctx context.Context, d delivery) {
	h := c.handlers[d.msg.Topic]
	if h == nil {
		return
	}
	start := time.Now()

	var err error
	for attempt := 1; ; attempt++ {
		err = safeHandle(ctx, h, d.msg.Value)
		if err == nil || attempt > c.cfg.RetryMax {
			break
		}
		if !sleepCtx(ctx, backoff(c.cfg.BackoffMin, c.cfg.BackoffMax, attempt)) {
			return
		}
	}

	if c.after != nil {
		c.after(d.msg.Topic, d.msg, time.Since(start), err)
	}

	if err != nil {
		c.log.Error("message handling failed",
			applogger.String("topic", d.msg.Topic),
			applogger.Int64("offset", d.msg.Offset),
			applogger.Error(err),
		)
		if !c.deadLetter(ctx, d.msg, err) {
			// leave uncommitted so the group redelivers it
			return
		}
	}

	commitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if cerr := d.reader.CommitMessages(commitCtx, d.msg); cerr != nil {
		c.log.Warn("commit failed", applogger.String("topic", d.msg.Topic), applogger.Error(cerr))
	}
}

func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message, cause error) bool {
	if c.dlq == nil {
		return false
	}
	err := c.dlq.WriteMessages(ctx, kafka.Message{
		Topic: c.cfg.DLQTopic,
		Key:   msg.Key,
		Value: msg.Value,
		Headers: []kafka.Header{
			{Key: "source_topic", Value: []byte(msg.Topic)},
			{Key: "error", Value: []byte(cause.Error())},
		},
	})
	if err != nil {
		c.log.Error("dlq write failed", applogger.String("dlq", c.cfg.DLQTopic), applogger.Error(err))
		return false
	}
	return true
}

// Stop cancels fetching, lets workers finish in-flight messages and closes readers.
func (c *Consumer) Stop(ctx context.Context) error {
	var stopErr error
	c.once.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		done := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			stopErr = fmt.Errorf("kafka consumer stop: %w", ctx.Err())
		}
		for _, r := range c.readers {
			if err := r.Close(); err != nil {
				c.log.Warn("reader close failed", applogger.Error(err))
			}
		}
		if c.dlq != nil {
			_ = c.dlq.Close()
		}
	})
	return stopErr
}

func safeHandle(ctx context.Context, h MessageHandler, payload []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h.Handle(ctx, payload)
}

// backoff doubles from min up to max and subtracts up to half as jitter.
func backoff(min, max time.Duration, attempt int) time.Duration {
	if min <= 0 {
		min = 50 * time.Millisecond
	}
	if max < min {
		max = min
	}
	d := min << uint(attempt-1)
	if d > max || d <= 0 {
		d = max
	}
	if half := int64(d) / 2; half > 0 {
		d -= time.Duration(rand.Int63n(half))
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
