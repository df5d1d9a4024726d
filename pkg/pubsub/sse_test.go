package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func status(step int) HoistStatus {
	return HoistStatus{State: "hoisting", Message: "running hoist driver", Step: step, Total: 5}
}

func TestEventBuffer(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	// Configure hoist_status with buffer size 3, replay all.
	pub.ConfigureTopic("hoist_status", TopicConfig{
		BufferSize: 3,
		ReplayAll:  true,
	})

	// Publish 5 status updates, one per hoist step.
	for i := 1; i <= 5; i++ {
		if err := pub.Publish("hoist_status", "status", status(i)); err != nil {
			t.Fatalf("Failed to publish status %d: %v", i, err)
		}
	}

	// Subscribe and verify we get the last 3 updates.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	sub, err := pub.Subscribe(ctx, "hoist_status")
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	// Should receive last 3 events (3, 4, 5)
	receivedCount := 0
	for receivedCount < 3 {
		select {
		case event := <-sub.Events():
			receivedCount++
			t.Logf("Received replayed event version %d", event.Version)
			expectedVersion := receivedCount + 2
			if event.Version != expectedVersion {
				t.Errorf("Expected version %d, got %d", expectedVersion, event.Version)
			}
			var s HoistStatus
			if err := json.Unmarshal(event.Data, &s); err != nil {
				t.Fatalf("Failed to decode HoistStatus: %v", err)
			}
			if s.Step != expectedVersion {
				t.Errorf("Expected step %d, got %d", expectedVersion, s.Step)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("Timeout waiting for event %d", receivedCount+1)
		}
	}

	if receivedCount != 3 {
		t.Errorf("Expected 3 replayed events, got %d", receivedCount)
	}
}

func TestReplayLastOnly(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	// Configure hoist_status with buffer size 5, replay only last (the replay
	// mode pkg/web.NewServer uses for this topic, with a buffer of 10).
	pub.ConfigureTopic("hoist_status", TopicConfig{
		BufferSize: 5,
		ReplayAll:  false,
	})

	// Publish 3 status updates.
	for i := 1; i <= 3; i++ {
		if err := pub.Publish("hoist_status", "status", status(i)); err != nil {
			t.Fatalf("Failed to publish status %d: %v", i, err)
		}
	}

	// Subscribe and verify we get only the last status.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	sub, err := pub.Subscribe(ctx, "hoist_status")
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	select {
	case event := <-sub.Events():
		if event.Version != 3 {
			t.Errorf("Expected version 3, got %d", event.Version)
		}
		var s HoistStatus
		if err := json.Unmarshal(event.Data, &s); err != nil {
			t.Fatalf("Failed to decode HoistStatus: %v", err)
		}
		if s.Step != 3 {
			t.Errorf("Expected step 3, got %d", s.Step)
		}
		t.Logf("Received last event version %d", event.Version)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
	}

	// Verify no more events are sent.
	select {
	case event := <-sub.Events():
		t.Errorf("Received unexpected extra event version %d", event.Version)
	case <-time.After(50 * time.Millisecond):
		// Good, no extra events
	}
}

func TestNoBuffer(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	// Configure hoist_trace with no buffer.
	pub.ConfigureTopic("hoist_trace", TopicConfig{
		BufferSize: 0,
		ReplayAll:  false,
	})

	// Publish trace entries before subscribing.
	for i := 1; i <= 3; i++ {
		if err := pub.Publish("hoist_trace", "verdict", HoistTraceEntry{
			Kind: "verdict", Path: ".", Name: "A", Detail: "yes",
		}); err != nil {
			t.Fatalf("Failed to publish trace entry %d: %v", i, err)
		}
	}

	// Subscribe - should not receive any replayed events.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	sub, err := pub.Subscribe(ctx, "hoist_trace")
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	select {
	case event := <-sub.Events():
		t.Errorf("Received unexpected replayed event version %d", event.Version)
	case <-time.After(50 * time.Millisecond):
		// Good, no events replayed
		t.Log("Correctly received no events (buffer disabled)")
	}

	// Now publish a new trace entry - subscriber should receive it live.
	if err := pub.Publish("hoist_trace", "hoisted", HoistTraceEntry{
		Kind: "hoisted", Path: ".A", Name: "B", Detail: "-> .",
	}); err != nil {
		t.Fatalf("Failed to publish new trace entry: %v", err)
	}

	select {
	case event := <-sub.Events():
		if event.Version != 4 {
			t.Errorf("Expected version 4, got %d", event.Version)
		}
		var e HoistTraceEntry
		if err := json.Unmarshal(event.Data, &e); err != nil {
			t.Fatalf("Failed to decode HoistTraceEntry: %v", err)
		}
		if e.Kind != "hoisted" || e.Name != "B" {
			t.Errorf("Expected hoisted entry for B, got %+v", e)
		}
		t.Logf("Received new event version %d", event.Version)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for new event")
	}
}
