package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Rotty13/llm-sim-sub001/internal/action"
	"github.com/Rotty13/llm-sim-sub001/internal/events"
)

func dialTestHub(t *testing.T, validate bool) (*Hub, *websocket.Conn) {
	t.Helper()
	h, err := NewHub(validate)
	if err != nil {
		t.Fatalf("new hub: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)

	ts := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	t.Cleanup(ts.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	waitFor(t, func() bool { return h.ClientCount() == 1 })
	return h, conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

// readFrames collects frames until want have arrived. A single websocket
// message may carry several newline-joined frames.
func readFrames(t *testing.T, conn *websocket.Conn, want int) []Frame {
	t.Helper()
	var out []Frame
	for len(out) < want {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read after %d frames: %v", len(out), err)
		}
		for _, line := range strings.Split(string(msg), "\n") {
			if line == "" {
				continue
			}
			var f Frame
			if err := json.Unmarshal([]byte(line), &f); err != nil {
				t.Fatalf("bad frame %q: %v", line, err)
			}
			out = append(out, f)
		}
	}
	return out
}

func TestInstructionFrameReachesObserver(t *testing.T) {
	h, conn := dialTestHub(t, true)

	h.OnInstruction("Mara", 42, action.Instruction{Verb: action.VerbMove, Payload: `{"to":"Cafe"}`})

	frames := readFrames(t, conn, 1)
	f := frames[0]
	if f.Type != FrameInstruction || f.Tick != 42 || f.Persona != "Mara" {
		t.Errorf("frame = %+v", f)
	}
	if f.Instruction != `MOVE({"to":"Cafe"})` {
		t.Errorf("instruction = %q", f.Instruction)
	}
}

func TestEventPollerSkipsHistoryAndStreamsNewEvents(t *testing.T) {
	h, conn := dialTestHub(t, false)

	log := events.NewLog()
	log.Append(events.Event{Tick: 1, Persona: "Bo", Category: events.CategoryAction, Description: "old news"})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h.StartEventPoller(ctx, log)

	log.Append(events.Event{Tick: 2, Persona: "Mara", Category: events.CategoryAction, Description: "Mara eats a meal"})
	log.Append(events.Event{Tick: 3, Category: events.CategoryWeather, Description: "the weather turns rain"})

	frames := readFrames(t, conn, 2)
	if frames[0].Description != "Mara eats a meal" || frames[0].Tick != 2 {
		t.Errorf("first frame = %+v, pre-poller history should not stream", frames[0])
	}
	if frames[1].Category != events.CategoryWeather || frames[1].Persona != "" {
		t.Errorf("second frame = %+v", frames[1])
	}
}

func TestValidatorDropsMalformedFrames(t *testing.T) {
	h, conn := dialTestHub(t, true)

	// Instruction frames without a payload fail the schema and never leave.
	h.Broadcast(Frame{Type: FrameInstruction, Tick: 1})
	h.Broadcast(EventFrame(events.Event{Tick: 2, Persona: "Bo", Category: events.CategoryAction, Description: "Bo sleeps"}))

	frames := readFrames(t, conn, 1)
	if frames[0].Type != FrameEvent || frames[0].Tick != 2 {
		t.Errorf("first delivered frame = %+v, want the valid event", frames[0])
	}
}

func TestFrameWireShape(t *testing.T) {
	in := InstructionFrame("Mara", 7, action.Instruction{Verb: action.VerbThink, Payload: `{"note":"quiet day"}`})
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	if strings.Contains(s, "category") || strings.Contains(s, "description") {
		t.Errorf("instruction frame leaks event fields: %s", s)
	}

	ev := EventFrame(events.Event{Tick: 9, Category: events.CategoryMood, Description: "Bo is feeling lonely"})
	b, err = json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s = string(b)
	if strings.Contains(s, "persona") || strings.Contains(s, "instruction") {
		t.Errorf("event frame leaks empty fields: %s", s)
	}
}
