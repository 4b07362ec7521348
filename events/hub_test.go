package events

import (
	"testing"
)

func TestHubBroadcastReachesAllSubscribers(t *testing.T) {
	hub := NewHub(4)

	ch1, detach1 := hub.Subscribe()
	ch2, detach2 := hub.Subscribe()
	defer detach1()
	defer detach2()

	hub.Broadcast(Event{Type: TypeDownloadStarted, Data: map[string]any{"video_id": "v1"}})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case got := <-ch:
			if got.Type != TypeDownloadStarted {
				t.Errorf("subscriber %d: got type %q, want %q", i, got.Type, TypeDownloadStarted)
			}
			if got.Data["video_id"] != "v1" {
				t.Errorf("subscriber %d: got data %v", i, got.Data)
			}
		default:
			t.Errorf("subscriber %d: no event delivered", i)
		}
	}
}

func TestHubNoReplayForLateJoiners(t *testing.T) {
	hub := NewHub(4)

	hub.Broadcast(Event{Type: TypeTranscribeStarted})

	ch, detach := hub.Subscribe()
	defer detach()

	select {
	case got := <-ch:
		t.Fatalf("late joiner received replayed event %q", got.Type)
	default:
	}
}

func TestHubSlowSubscriberDoesNotBlockBroadcast(t *testing.T) {
	hub := NewHub(1)

	slow, detachSlow := hub.Subscribe()
	fast, detachFast := hub.Subscribe()
	defer detachSlow()
	defer detachFast()

	// Fill the slow subscriber's buffer, then broadcast again. The second
	// broadcast must not block and must still reach the fast subscriber.
	hub.Broadcast(Event{Type: TypeDownloadProgress})
	<-fast
	hub.Broadcast(Event{Type: TypeDownloadCompleted})

	if got := <-fast; got.Type != TypeDownloadCompleted {
		t.Errorf("fast subscriber got %q, want %q", got.Type, TypeDownloadCompleted)
	}
	if got := <-slow; got.Type != TypeDownloadProgress {
		t.Errorf("slow subscriber got %q, want %q", got.Type, TypeDownloadProgress)
	}
	select {
	case got := <-slow:
		t.Errorf("slow subscriber unexpectedly got %q", got.Type)
	default:
	}
}

func TestHubDetachIsIdempotentAndRemovesSubscriber(t *testing.T) {
	hub := NewHub(4)

	_, detach := hub.Subscribe()
	if n := hub.SubscriberCount(); n != 1 {
		t.Fatalf("SubscriberCount = %d, want 1", n)
	}

	detach()
	detach()

	if n := hub.SubscriberCount(); n != 0 {
		t.Errorf("SubscriberCount after detach = %d, want 0", n)
	}

	// Broadcasting into an empty hub must not panic.
	hub.Broadcast(Event{Type: TypeProcessError})
}
