package bus

import (
	"context"
	"testing"
	"time"

	"doc-analytics/internal/domain"
)

func TestPublishFansOutToAllTopicSubscribers(t *testing.T) {
	b := New(4)
	ch1, cancel1 := b.Subscribe("Alpha")
	defer cancel1()
	ch2, cancel2 := b.Subscribe("Alpha")
	defer cancel2()

	msg := domain.TopicMessage{Topic: "Alpha", Content: "hello"}
	if err := b.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	for i, ch := range []<-chan domain.TopicMessage{ch1, ch2} {
		select {
		case got := <-ch:
			if got != msg {
				t.Errorf("subscriber %d got %+v, want %+v", i, got, msg)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d never received the broadcast", i)
		}
	}
}

func TestPublishFiltersExactTopic(t *testing.T) {
	b := New(4)
	alpha, cancelAlpha := b.Subscribe("Alpha")
	defer cancelAlpha()
	prefix, cancelPrefix := b.Subscribe("Alph")
	defer cancelPrefix()

	_ = b.Publish(context.Background(), domain.TopicMessage{Topic: "Alpha", Content: "x"})

	select {
	case <-alpha:
	case <-time.After(time.Second):
		t.Fatal("exact-match subscriber never received the message")
	}

	select {
	case got := <-prefix:
		t.Errorf("prefix subscriber received %+v, want nothing", got)
	default:
	}
}

func TestLateSubscriberSeesNoReplay(t *testing.T) {
	b := New(4)
	_ = b.Publish(context.Background(), domain.TopicMessage{Topic: "Alpha", Content: "early"})

	ch, cancel := b.Subscribe("Alpha")
	defer cancel()

	select {
	case got := <-ch:
		t.Errorf("late subscriber received %+v, want nothing", got)
	default:
	}
}

func TestPublishNeverBlocksOnFullBuffer(t *testing.T) {
	b := New(1)
	ch, cancel := b.Subscribe("Alpha")
	defer cancel()

	// Fill the buffer, then publish past it. The extra messages are dropped.
	for i := 0; i < 5; i++ {
		done := make(chan struct{})
		go func() {
			_ = b.Publish(context.Background(), domain.TopicMessage{Topic: "Alpha", Content: "x"})
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Publish blocked on a full subscriber buffer")
		}
	}

	// Exactly one message fit the buffer.
	if got := len(ch); got != 1 {
		t.Errorf("buffered messages = %d, want 1", got)
	}
}

func TestConsumeDeliversUntilCancel(t *testing.T) {
	b := New(8)
	ctx, cancel := context.WithCancel(context.Background())

	received := make(chan domain.TopicMessage, 8)
	done := make(chan error, 1)
	go func() {
		done <- b.Consume(ctx, "Alpha", func(_ context.Context, msg domain.TopicMessage) error {
			received <- msg
			return nil
		})
	}()

	// Retry until the consumer's subscription is registered.
	var got domain.TopicMessage
	deadline := time.Now().Add(2 * time.Second)
loop:
	for {
		_ = b.Publish(ctx, domain.TopicMessage{Topic: "Alpha", Content: "payload"})
		select {
		case got = <-received:
			break loop
		case <-time.After(10 * time.Millisecond):
			if time.Now().After(deadline) {
				t.Fatal("handler never received the broadcast")
			}
		}
	}
	if got.Content != "payload" {
		t.Errorf("handler got %+v, want payload", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Consume returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Consume did not return after cancellation")
	}
}

func TestCancelClosesSubscription(t *testing.T) {
	b := New(4)
	ch, cancel := b.Subscribe("Alpha")
	cancel()

	if _, ok := <-ch; ok {
		t.Error("channel delivered a message after cancel")
	}

	// Double cancel must be safe.
	cancel()

	// Publishing after cancel must not panic or deliver.
	_ = b.Publish(context.Background(), domain.TopicMessage{Topic: "Alpha", Content: "x"})
}
