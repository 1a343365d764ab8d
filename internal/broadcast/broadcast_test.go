package broadcast

import (
	"encoding/json"
	"testing"

	"museumtour/internal/events"
)

type captureSink struct {
	messages [][]byte
}

func (s *captureSink) Broadcast(data []byte) {
	s.messages = append(s.messages, data)
}

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}
	return m
}

func TestEncode_EventKinds(t *testing.T) {
	tests := []struct {
		name  string
		event events.Event
		want  map[string]any
	}{
		{
			name:  "room enter",
			event: events.RoomEnter{RoomID: "room1"},
			want:  map[string]any{"t": "room-enter", "roomId": "room1"},
		},
		{
			name:  "transition start",
			event: events.RoomTransitionStart{From: "home", To: "room1"},
			want:  map[string]any{"t": "room-transition-start", "from": "home", "to": "room1"},
		},
		{
			name:  "switch room",
			event: events.SwitchRoom{TargetRoom: "room2"},
			want:  map[string]any{"t": "switch-room", "targetRoom": "room2"},
		},
		{
			name:  "object click",
			event: events.ObjectClick{ObjectID: "obj-room1-ship", Title: "Ship", Description: "A ship", Image: "ship.jpg"},
			want:  map[string]any{"t": "object-click", "objectId": "obj-room1-ship", "title": "Ship", "description": "A ship", "image": "ship.jpg"},
		},
		{
			name:  "object completed",
			event: events.ObjectCompleted{ObjectID: "obj-room1-ship"},
			want:  map[string]any{"t": "object-completed", "objectId": "obj-room1-ship"},
		},
		{
			name:  "room complete",
			event: events.RoomComplete{RoomID: "room1", ObjectsCompleted: 3, TotalObjects: 3},
			want:  map[string]any{"t": "room-complete", "roomId": "room1", "objectsCompleted": float64(3), "totalObjects": float64(3)},
		},
		{
			name:  "door unlocked",
			event: events.DoorUnlocked{RoomID: "room1", TargetRoom: "room2"},
			want:  map[string]any{"t": "door-unlocked", "roomId": "room1", "targetRoom": "room2"},
		},
		{
			name:  "door denied",
			event: events.DoorDenied{RoomID: "room1", TargetRoom: "room2"},
			want:  map[string]any{"t": "door-denied", "roomId": "room1", "targetRoom": "room2"},
		},
		{
			name:  "player near",
			event: events.PlayerNear{TargetRoom: "room2", Distance: 1.5},
			want:  map[string]any{"t": "player-near", "targetRoom": "room2", "distance": 1.5},
		},
		{
			name:  "notification",
			event: events.Notification{Title: "Room Complete!", Message: "Doors unlocked", Level: "success", Duration: 3000},
			want:  map[string]any{"t": "notification", "title": "Room Complete!", "message": "Doors unlocked", "level": "success", "durationMs": float64(3000)},
		},
		{
			name:  "play sound",
			event: events.PlaySound{SoundID: "door-open", Volume: 0.8},
			want:  map[string]any{"t": "play-sound", "soundId": "door-open", "volume": 0.8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.event)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			got := decode(t, data)
			if len(got) != len(tt.want) {
				t.Errorf("got %d fields %v, want %d fields %v", len(got), got, len(tt.want), tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("field %q = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestNewBroadcaster_ForwardsBusEvents(t *testing.T) {
	bus := events.NewBus()
	sink := &captureSink{}
	b := NewBroadcaster(bus, sink)

	ch := b.Subscribe()
	bus.Publish(events.RoomEnter{RoomID: "room1"})

	if len(sink.messages) != 1 {
		t.Fatalf("sink got %d messages, want 1", len(sink.messages))
	}
	select {
	case msg := <-ch:
		m := decode(t, msg)
		if m["t"] != "room-enter" || m["roomId"] != "room1" {
			t.Errorf("subscriber got %v", m)
		}
	default:
		t.Fatal("subscriber did not receive event")
	}

	b.Unsubscribe(ch)
}

func TestBroadcaster_SubscribeUnsubscribe(t *testing.T) {
	bus := events.NewBus()
	b := NewBroadcaster(bus, nil)

	ch := b.Subscribe()
	b.mu.Lock()
	if len(b.clients) != 1 {
		t.Errorf("clients count = %d, want 1", len(b.clients))
	}
	b.mu.Unlock()

	b.Unsubscribe(ch)
	b.mu.Lock()
	if len(b.clients) != 0 {
		t.Errorf("clients count after unsubscribe = %d, want 0", len(b.clients))
	}
	b.mu.Unlock()

	if _, ok := <-ch; ok {
		t.Error("expected channel closed after unsubscribe")
	}
}

func TestBroadcaster_SkipsFullChannels(t *testing.T) {
	bus := events.NewBus()
	b := NewBroadcaster(bus, nil)

	ch := b.Subscribe()
	for i := 0; i < 12; i++ {
		bus.Publish(events.RoomExit{RoomID: "home"})
	}
	// Channel capacity is 10; the extra publishes must not have blocked and
	// the buffered messages are intact.
	for i := 0; i < 10; i++ {
		<-ch
	}
	select {
	case msg := <-ch:
		t.Errorf("expected overflow dropped, got %q", msg)
	default:
	}

	b.Unsubscribe(ch)
}
