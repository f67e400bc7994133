package events

import (
	"testing"
	"time"

	"decomp/internal/ir"
	"decomp/internal/proc"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	h := NewHub()
	sub, unsubscribe := h.Subscribe()
	defer unsubscribe()

	h.PublishStatus(ir.Addr(0x1000), "main", proc.StatusDecoded)

	select {
	case ev := <-sub:
		if ev.ProcName != "main" || ev.Status != proc.StatusDecoded {
			t.Fatalf("got %+v, want main/StatusDecoded", ev)
		}
		if ev.StatusName != "decoded" {
			t.Fatalf("got status name %q, want decoded", ev.StatusName)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub()
	sub, unsubscribe := h.Subscribe()
	unsubscribe()

	h.PublishStatus(ir.Addr(0x2000), "f", proc.StatusVisited)

	if _, ok := <-sub; ok {
		t.Fatal("expected channel closed by unsubscribe, got an event")
	}
}

func TestPublishFanOutToMultipleSubscribers(t *testing.T) {
	h := NewHub()
	sub1, unsub1 := h.Subscribe()
	defer unsub1()
	sub2, unsub2 := h.Subscribe()
	defer unsub2()

	h.PublishStatus(ir.Addr(0x3000), "g", proc.StatusFinalDone)

	for _, sub := range []<-chan Event{sub1, sub2} {
		select {
		case ev := <-sub:
			if ev.ProcName != "g" {
				t.Fatalf("got %+v, want proc name g", ev)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for fan-out event")
		}
	}
}

func TestPublishDropsOldestWhenSubscriberFull(t *testing.T) {
	h := NewHub()
	sub, unsubscribe := h.Subscribe()
	defer unsubscribe()

	// Overfill the subscriber's buffer; Publish must not block.
	for i := 0; i < 100; i++ {
		h.PublishStatus(ir.Addr(uint64(i)), "flood", proc.StatusNew)
	}

	count := 0
drain:
	for {
		select {
		case <-sub:
			count++
		default:
			break drain
		}
	}
	if count == 0 {
		t.Fatal("expected at least some buffered events to survive")
	}
	if count > 64 {
		t.Fatalf("got %d buffered events, want at most the channel capacity", count)
	}
}
