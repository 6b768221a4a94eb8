package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mauv0809/training-match/internal/notifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHub(t *testing.T) (*Hub, string) {
	t.Helper()
	h := New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimPrefix(r.URL.Path, "/ws/")
		if err := h.Serve(w, r, code, r.URL.Query().Get("member")); err != nil {
			t.Logf("serve: %v", err)
		}
	}))
	t.Cleanup(func() {
		h.Close()
		srv.Close()
	})
	return h, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) notifier.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var e notifier.Event
	require.NoError(t, json.Unmarshal(data, &e))
	return e
}

func TestHub_BroadcastAndTargeted(t *testing.T) {
	h, base := setupHub(t)

	anna := dial(t, base+"/ws/abc234?member=m1")
	bo := dial(t, base+"/ws/ABC234?member=m2")
	other := dial(t, base+"/ws/ZZZ999?member=m3")

	require.Eventually(t, func() bool { return h.ViewerCount("ABC234") == 2 && h.ViewerCount("ZZZ999") == 1 },
		2*time.Second, 10*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, h.Notify(ctx, notifier.Event{Kind: notifier.ScoreUpdated, MatchCode: "ABC234"}))
	assert.Equal(t, notifier.ScoreUpdated, readEvent(t, anna).Kind)
	assert.Equal(t, notifier.ScoreUpdated, readEvent(t, bo).Kind)

	require.NoError(t, h.Notify(ctx, notifier.Event{Kind: notifier.JoinRequestCreated, MatchCode: "ABC234", TargetMemberID: "m1"}))
	require.NoError(t, h.Notify(ctx, notifier.Event{Kind: notifier.ParticipantJoined, MatchCode: "ABC234"}))

	assert.Equal(t, notifier.JoinRequestCreated, readEvent(t, anna).Kind)
	assert.Equal(t, notifier.ParticipantJoined, readEvent(t, anna).Kind)
	// The targeted event never reached the other viewer.
	assert.Equal(t, notifier.ParticipantJoined, readEvent(t, bo).Kind)

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "viewers of other matches receive nothing")
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	h, base := setupHub(t)

	conn := dial(t, base+"/ws/ABC234")
	require.Eventually(t, func() bool { return h.ViewerCount("ABC234") == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return h.ViewerCount("ABC234") == 0 }, 2*time.Second, 10*time.Millisecond)
}
