package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubOrderingAndReconnect(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	userID := uuid.New()
	channel := UserChannel(userID)

	clientA := hub.NewSSEClient(userID)
	hub.AddChannel(clientA, channel)

	first := SSEMessage{Channel: channel, Event: SSEEventProjectProcessing, Data: map[string]any{"seq": 1}}
	second := SSEMessage{Channel: channel, Event: SSEEventTranscriptionCompleted, Data: map[string]any{"seq": 2}}
	hub.Broadcast(first)
	hub.Broadcast(second)

	gotFirst := recvMessage(t, clientA.Outbound, time.Second)
	gotSecond := recvMessage(t, clientA.Outbound, time.Second)
	if gotFirst.Event != SSEEventProjectProcessing {
		t.Fatalf("first event: want=%s got=%s", SSEEventProjectProcessing, gotFirst.Event)
	}
	if gotSecond.Event != SSEEventTranscriptionCompleted {
		t.Fatalf("second event: want=%s got=%s", SSEEventTranscriptionCompleted, gotSecond.Event)
	}

	hub.CloseClient(clientA)
	select {
	case _, ok := <-clientA.Outbound:
		if ok {
			t.Fatalf("clientA outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for clientA channel close")
	}

	clientB := hub.NewSSEClient(userID)
	hub.AddChannel(clientB, channel)
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventProjectCompleted})
	got := recvMessage(t, clientB.Outbound, time.Second)
	if got.Event != SSEEventProjectCompleted {
		t.Fatalf("reconnect event: want=%s got=%s", SSEEventProjectCompleted, got.Event)
	}
}

func TestSSEHubUnknownChannelIsNoop(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, UserChannel(client.UserID))

	hub.Broadcast(SSEMessage{Channel: "user:nobody", Event: SSEEventTaskSettled})
	select {
	case msg := <-client.Outbound:
		t.Fatalf("unexpected message %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}
