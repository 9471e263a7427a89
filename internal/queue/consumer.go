package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    "github.com/google/logger"
    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/segmentio/kafka-go"

    "github.com/iliyamo/festa-do-viso/internal/config"
)

// Handler processes one decoded event.
type Handler func(ev RaffleEvent) error

// StartConsumer blocks consuming events from the configured backend until
// ctx is cancelled.  With the "none" backend it returns immediately.
func StartConsumer(ctx context.Context, cfg config.EventsConfig, h Handler) error {
    switch cfg.Backend {
    case config.EventsAMQP:
        return ConsumeAMQP(ctx, cfg.AMQPURL, cfg.Queue, h)
    case config.EventsKafka:
        return ConsumeKafka(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, h)
    }
    return nil
}

// ConsumeAMQP connects to RabbitMQ, declares the queue (durable) and
// consumes until ctx is done.  Broken connections are re-dialled with
// exponential backoff capped at 30s.  A message that cannot be handled is
// rejected without requeue so it cannot loop.
func ConsumeAMQP(ctx context.Context, url, queue string, h Handler) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(url)
        if err != nil {
            logger.Warningf("event-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = consumeLoop(ctx, conn, queue, h)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        logger.Warningf("event-consumer: consume loop ended: %v; reconnecting", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, queue string, h Handler) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        logger.Warningf("event-consumer: set QoS failed: %v", err)
    }
    if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := dispatch(d.Body, h); err != nil {
                logger.Errorf("event-consumer: handle message failed: %v", err)
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// ConsumeKafka reads the topic as part of a consumer group until ctx is
// done.  Offsets are committed by the reader after each message.
func ConsumeKafka(ctx context.Context, brokers []string, topic, groupID string, h Handler) error {
    r := kafka.NewReader(kafka.ReaderConfig{
        Brokers:  brokers,
        Topic:    topic,
        GroupID:  groupID,
        MinBytes: 1,
        MaxBytes: 10e6, // 10MB
    })
    defer r.Close()

    for {
        m, err := r.ReadMessage(ctx)
        if err != nil {
            if ctx.Err() != nil {
                return ctx.Err()
            }
            logger.Warningf("event-consumer: kafka read failed: %v", err)
            if !sleep(ctx, time.Second) {
                return ctx.Err()
            }
            continue
        }
        if err := dispatch(m.Value, h); err != nil {
            logger.Errorf("event-consumer: handle message at offset %d failed: %v", m.Offset, err)
        }
    }
}

func dispatch(body []byte, h Handler) error {
    var ev RaffleEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    return h(ev)
}

// sleep waits for d or until ctx is done; it reports whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
