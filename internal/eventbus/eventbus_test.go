package eventbus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	defer b.Close()

	sub := b.Subscribe()
	b.Publish("hello")

	select {
	case e := <-sub:
		if e != "hello" {
			t.Fatalf("expected hello got %v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestPublishFansOut(t *testing.T) {
	b := New()
	defer b.Close()

	a := b.Subscribe()
	c := b.Subscribe()
	b.Publish(42)

	if e := <-a; e != 42 {
		t.Fatalf("expected 42 got %v", e)
	}
	if e := <-c; e != 42 {
		t.Fatalf("expected 42 got %v", e)
	}
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	b := New()
	defer b.Close()

	_ = b.Subscribe()
	done := make(chan struct{})
	go func() {
		// Far past the subscriber buffer; must never stall.
		for i := 0; i < subscriberBuffer*4; i++ {
			b.Publish(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New()
	defer b.Close()

	sub := b.Subscribe()
	b.Unsubscribe(sub)

	if _, ok := <-sub; ok {
		t.Fatalf("expected closed channel")
	}

	// Publishing after unsubscribe must not panic.
	b.Publish("late")
}

func TestCloseIsIdempotent(t *testing.T) {
	b := New()
	sub := b.Subscribe()

	b.Close()
	b.Close()

	if _, ok := <-sub; ok {
		t.Fatalf("expected closed channel after close")
	}

	b.Publish("after close")
	if _, ok := <-b.Subscribe(); ok {
		t.Fatalf("subscribe after close must return a closed channel")
	}
}
