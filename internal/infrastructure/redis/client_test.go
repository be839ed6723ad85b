package redis

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"

	redisRepo "github.com/iho/goloan/internal/adapter/repository/redis"
	"github.com/iho/goloan/internal/domain"
)

func TestNewClientSuccess(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()

	ctx := context.Background()
	client, err := NewClient(ctx, fmt.Sprintf("redis://%s", s.Addr()))
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestNewClientInvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "://bad-url")
	if err == nil {
		t.Fatalf("expected error for invalid URL")
	}
}

func TestNewClientPingFailure(t *testing.T) {
	s := miniredis.RunT(t)
	url := fmt.Sprintf("redis://%s", s.Addr())
	s.Close() // close before attempting to connect

	_, err := NewClient(context.Background(), url)
	if err == nil {
		t.Fatalf("expected ping error when server is down")
	}
}

func TestNewClientCarriesLoanEvents(t *testing.T) {
	s := miniredis.RunT(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := NewClient(ctx, fmt.Sprintf("redis://%s/0", s.Addr()))
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	defer client.Close()

	sub := client.Subscribe(ctx, "goloan:test-events")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	terms, err := domain.ComputeLoanTerms(decimal.NewFromInt(1200), 1, decimal.Zero)
	if err != nil {
		t.Fatalf("compute terms: %v", err)
	}
	loan := domain.NewLoan("loan-1", "cust-1", terms, time.Now().UTC())

	publisher := redisRepo.NewEventPublisher(client, "goloan:test-events")
	if err := publisher.Publish(ctx, domain.NewLoanCreatedEvent("evt-1", loan)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}
	if !strings.Contains(msg.Payload, domain.EventTypeLoanCreated) || !strings.Contains(msg.Payload, "loan-1") {
		t.Fatalf("unexpected message: %s", msg.Payload)
	}
}
