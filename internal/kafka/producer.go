package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/quickreserve/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ReservationEvent is published on every lifecycle change of a reservation.
type ReservationEvent struct {
	Type            string     `json:"type"`
	ReservationID   string     `json:"reservation_id"`
	StoreID         string     `json:"store_id"`
	UserID          string     `json:"user_id,omitempty"`
	CallerName      string     `json:"caller_name"`
	CallerPhone     string     `json:"caller_phone"`
	PartySize       int        `json:"party_size"`
	Status          string     `json:"status"`
	ArrivalTime     time.Time  `json:"arrival_time"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	OccurredAt      time.Time  `json:"occurred_at"`
}

func NewReservationEvent(r *domain.Reservation, now time.Time) ReservationEvent {
	ev := ReservationEvent{
		Type:          domain.EventTypeFor(r.Status),
		ReservationID: r.ID,
		StoreID:       r.StoreID,
		UserID:        r.UserID,
		CallerName:    r.CallerName,
		CallerPhone:   r.CallerPhone,
		PartySize:     r.PartySize,
		Status:        string(r.Status),
		ArrivalTime:   r.ArrivalTime,
		ConfirmedAt:   r.ConfirmedAt,
		OccurredAt:    now,
	}
	if r.RejectionReason != nil {
		ev.RejectionReason = *r.RejectionReason
	}
	return ev
}

type Producer struct {
	brokers []string
	writer  *kafka.Writer
	logger  *zap.Logger
}

func NewProducer(brokers []string, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		WriteTimeout: 2 * time.Second,
		Async:        false,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
		logger:  logger,
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.logger.Debug("published event", zap.String("topic", topic), zap.String("key", key))
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and lists partitions.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}

	p.logger.Info("connected to kafka", zap.Int("partitions", len(partitions)))
	return nil
}
