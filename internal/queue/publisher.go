package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    "github.com/google/logger"
    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/segmentio/kafka-go"

    "github.com/iliyamo/festa-do-viso/internal/config"
)

// Publisher sends raffle events to a broker.  Callers treat failures as
// non-fatal: the change that produced the event is already committed.
type Publisher interface {
    Publish(ctx context.Context, ev RaffleEvent) error
    Close() error
}

// NewPublisher returns the publisher selected by cfg.Backend.
func NewPublisher(cfg config.EventsConfig) (Publisher, error) {
    switch cfg.Backend {
    case config.EventsNone:
        return NopPublisher{}, nil
    case config.EventsAMQP:
        return &AMQPPublisher{URL: cfg.AMQPURL, Queue: cfg.Queue}, nil
    case config.EventsKafka:
        return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
    }
    return nil, fmt.Errorf("unknown EVENTS_BACKEND %q", cfg.Backend)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, RaffleEvent) error { return nil }
func (NopPublisher) Close() error                               { return nil }

// AMQPPublisher publishes each event to a durable RabbitMQ queue.  A
// connection is dialled per publish; raffle traffic is low.
type AMQPPublisher struct {
    URL   string
    Queue string
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev RaffleEvent) error {
    conn, err := amqp.Dial(p.URL)
    if err != nil {
        logger.Warningf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        logger.Warningf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
        logger.Warningf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    ev.ID,
        Type:         string(ev.Type),
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
        logger.Warningf("rabbitmq: publish failed: %v", err)
        return err
    }
    return nil
}

func (p *AMQPPublisher) Close() error { return nil }

// KafkaPublisher writes events to a topic, keyed by sheet so that events of
// one sheet stay ordered within a partition.
type KafkaPublisher struct {
    w *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
    return &KafkaPublisher{w: &kafka.Writer{
        Addr:                   kafka.TCP(brokers...),
        Topic:                  topic,
        Balancer:               &kafka.Hash{},
        RequiredAcks:           kafka.RequireOne,
        AllowAutoTopicCreation: true,
        BatchTimeout:           50 * time.Millisecond,
    }}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev RaffleEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return err
    }
    msg := kafka.Message{
        Key:   []byte(fmt.Sprintf("sheet-%d", ev.SheetID)),
        Value: body,
        Time:  ev.OccurredAt,
    }
    if err := p.w.WriteMessages(ctx, msg); err != nil {
        logger.Warningf("kafka: write %s failed: %v", ev.Type, err)
        return err
    }
    return nil
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }
