package network

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/MRamiBalles/aquarium-sim/internal/domain/fish"
	"github.com/MRamiBalles/aquarium-sim/internal/engine"
	"github.com/MRamiBalles/aquarium-sim/internal/platform/logger"
	"github.com/MRamiBalles/aquarium-sim/internal/platform/metrics"
	"github.com/MRamiBalles/aquarium-sim/internal/platform/optimization"
	"github.com/MRamiBalles/aquarium-sim/internal/view"
)

type staticFetcher []fish.RawRecord

func (f staticFetcher) FetchRawFish(ctx context.Context) ([]fish.RawRecord, error) {
	return f, nil
}

var noon = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	eng    *engine.Engine
	src    *engine.ManualTickSource
	hub    *Hub
	server *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	src := engine.NewManualTickSource()
	m := metrics.NewCollector()
	eng := engine.NewEngine(engine.Options{
		Source: src,
		Fetcher: staticFetcher{{
			ID: 1, Type: "Clownfish", Name: "Nemo", Weight: 100,
			FeedingSchedule: fish.RawSchedule{LastFeed: "12:00", IntervalInHours: 12},
		}},
		Start:   noon,
		Metrics: m,
	})
	if err := eng.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(eng, optimization.DefaultConfig(), m, logger.Discard())
	go hub.Run(ctx)

	srv := NewServer(eng, hub, eng.EventLog(), view.NewLocalizer("en"), m, logger.Discard())
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return &testEnv{eng: eng, src: src, hub: hub, server: ts}
}

func (e *testEnv) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(e.server.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(e.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
}

func TestGetState(t *testing.T) {
	env := newTestEnv(t)

	var state view.StateView
	decode(t, env.get(t, "/api/state"), &state)

	if state.FormattedTime != "01/01/2024, 12:00:00" {
		t.Errorf("unexpected time %q", state.FormattedTime)
	}
	if len(state.Fish) != 1 || state.Fish[0].RecommendedPerMeal != "0.50" {
		t.Errorf("unexpected fish %+v", state.Fish)
	}
}

func TestFeedEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.post(t, "/api/fish/1/feed", `{"amount": 0.5}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		OK     bool              `json:"ok"`
		Result engine.FeedResult `json:"result"`
	}
	decode(t, resp, &body)
	if !body.OK || body.Result.Outcome != engine.FeedAccepted {
		t.Errorf("expected accepted feeding, got %+v", body)
	}

	tests := []struct {
		path   string
		body   string
		status int
	}{
		{"/api/fish/42/feed", `{"amount": 0.5}`, http.StatusNotFound},
		{"/api/fish/abc/feed", `{"amount": 0.5}`, http.StatusBadRequest},
		{"/api/fish/1/feed", `{}`, http.StatusBadRequest},
		{"/api/fish/1/feed", `not json`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		if got := env.post(t, tc.path, tc.body).StatusCode; got != tc.status {
			t.Errorf("POST %s %s: expected %d, got %d", tc.path, tc.body, tc.status, got)
		}
	}
}

func TestClockEndpoints(t *testing.T) {
	env := newTestEnv(t)

	if got := env.post(t, "/api/clock/speed", `{"speed": 3600}`).StatusCode; got != http.StatusOK {
		t.Fatalf("expected 200 for speed, got %d", got)
	}
	if got := env.post(t, "/api/clock/speed", `{"speed": 0}`).StatusCode; got != http.StatusBadRequest {
		t.Errorf("expected 400 for zero speed, got %d", got)
	}

	var state view.StateView
	decode(t, env.post(t, "/api/clock/start", ""), &state)
	if !state.Running || state.SpeedLabel != "1h/s" {
		t.Errorf("expected running at 1h/s, got %+v", state)
	}

	env.src.Fire(2)
	decode(t, env.get(t, "/api/state"), &state)
	if state.FormattedTime != "01/01/2024, 14:00:00" {
		t.Errorf("expected two simulated hours to pass, got %q", state.FormattedTime)
	}

	decode(t, env.post(t, "/api/clock/pause", ""), &state)
	if !state.Paused {
		t.Error("expected paused")
	}
	if got := env.post(t, "/api/clock/rewind", "").StatusCode; got != http.StatusNotFound {
		t.Errorf("expected 404 for unknown action, got %d", got)
	}
}

func TestScheduleEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var info engine.ScheduleInfo
	decode(t, env.get(t, "/api/fish/1/schedule"), &info)
	if info.FeedingsPerDay != 2 || info.HoursUntilNextFeed != 12 {
		t.Errorf("unexpected schedule %+v", info)
	}
	if got := env.get(t, "/api/fish/9/schedule").StatusCode; got != http.StatusNotFound {
		t.Errorf("expected 404, got %d", got)
	}
}

func TestSpeedsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var presets []engine.SpeedPreset
	decode(t, env.get(t, "/api/speeds"), &presets)
	if len(presets) != 4 || presets[3].Value != 3600 || presets[3].Label != "1h/s" {
		t.Errorf("unexpected presets %+v", presets)
	}
}

func TestJournalEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.post(t, "/api/fish/1/feed", `{"amount": 0.5}`)
	env.post(t, "/api/fish/1/feed", `{"amount": 3}`)

	var all JournalResponse
	decode(t, env.get(t, "/api/events"), &all)
	if all.TotalEvents != 3 || all.Next != 3 {
		t.Fatalf("expected 3 events, got %+v", all)
	}

	var accepted JournalResponse
	decode(t, env.get(t, "/api/events?type=FEED_ACCEPTED&fish_id=1"), &accepted)
	if accepted.TotalEvents != 1 || accepted.Events[0].Impact != "POSITIVE" {
		t.Errorf("unexpected filtered result %+v", accepted)
	}

	var newer JournalResponse
	decode(t, env.get(t, "/api/events?since=2"), &newer)
	if newer.TotalEvents != 1 || newer.Events[0].Type != "FEED_REJECTED" {
		t.Errorf("unexpected since result %+v", newer)
	}

	var detail JournalEntry
	decode(t, env.get(t, "/api/events/"+all.Events[1].ID), &detail)
	if detail.Details == nil || detail.Summary == "" {
		t.Errorf("expected details and summary, got %+v", detail)
	}

	if got := env.get(t, "/api/events?since=-1").StatusCode; got != http.StatusBadRequest {
		t.Errorf("expected 400 for negative since, got %d", got)
	}
	if got := env.get(t, "/api/events/nope").StatusCode; got != http.StatusNotFound {
		t.Errorf("expected 404 for unknown event, got %d", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	resp := env.get(t, "/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(string(body), "aquarium_fish_total 1") {
		t.Error("expected fish gauge in /metrics output")
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return env
}

func TestWebSocketCommands(t *testing.T) {
	env := newTestEnv(t)
	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	if greeting := readEnvelope(t, conn); greeting.Type != "state" {
		t.Fatalf("expected state greeting, got %s", greeting.Type)
	}

	if err := conn.WriteJSON(Command{Type: "FEED", FishID: 1, Amount: 0.5}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	reply := readEnvelope(t, conn)
	if reply.Type != "feed_result" {
		t.Fatalf("expected feed_result, got %s", reply.Type)
	}
	result, _ := reply.Data.(map[string]interface{})
	if result["outcome"] != string(engine.FeedAccepted) {
		t.Errorf("expected accepted outcome, got %v", result)
	}

	conn.WriteJSON(Command{Type: "SET_SPEED", Speed: -1})
	if reply := readEnvelope(t, conn); reply.Type != "error" {
		t.Errorf("expected error for negative speed, got %s", reply.Type)
	}

	conn.WriteJSON(Command{Type: "START"})
	deadline := time.Now().Add(2 * time.Second)
	for !env.eng.Clock().IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !env.eng.Clock().IsRunning() {
		t.Error("expected START command to start the clock")
	}
}

func TestHubBroadcast(t *testing.T) {
	env := newTestEnv(t)
	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	readEnvelope(t, conn) // greeting

	deadline := time.Now().Add(2 * time.Second)
	for env.hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	env.hub.BroadcastJSON("event", map[string]string{"type": "FISH_DIED"})
	if got := readEnvelope(t, conn); got.Type != "event" {
		t.Errorf("expected broadcast event frame, got %s", got.Type)
	}
}

func TestEventPollerForwardsNewEvents(t *testing.T) {
	env := newTestEnv(t)
	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	readEnvelope(t, conn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fake := clockwork.NewFakeClock()
	env.hub.StartEventPoller(ctx, env.eng.EventLog(), fake, time.Second)

	waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Second)
	defer waitCancel()
	if err := fake.BlockUntilContext(waitCtx, 1); err != nil {
		t.Fatalf("poller never started: %v", err)
	}

	env.eng.Pause() // no-op, not running
	env.eng.Start()
	fake.Advance(time.Second)

	got := readEnvelope(t, conn)
	if got.Type != "event" {
		t.Fatalf("expected event frame, got %s", got.Type)
	}
	data, _ := got.Data.(map[string]interface{})
	if data["type"] != "CLOCK_STARTED" {
		t.Errorf("expected CLOCK_STARTED, got %v", data["type"])
	}
}

func TestClientRateLimit(t *testing.T) {
	hub := NewHub(nil, optimization.LowResourceConfig(), nil, logger.Discard())
	limit := hub.tuning.MaxMessagesPerSecond
	c := &Client{hub: hub, limiter: newCommandLimiter(limit)}
	now := time.Now()

	for i := 0; i < limit; i++ {
		if !c.allow(now) {
			t.Fatalf("message %d should be allowed", i)
		}
	}
	if c.allow(now) {
		t.Error("expected the limit to be enforced once the burst is spent")
	}

	// Half a second refills half the budget, not a whole new window.
	half := now.Add(500 * time.Millisecond)
	allowed := 0
	for i := 0; i < limit; i++ {
		if c.allow(half) {
			allowed++
		}
	}
	if allowed != limit/2 {
		t.Errorf("expected %d commands after half a second, got %d", limit/2, allowed)
	}

	if !c.allow(half.Add(time.Second)) {
		t.Error("expected the budget to refill after a second")
	}
}

func TestOnlyOneClientControls(t *testing.T) {
	env := newTestEnv(t)
	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws"

	first, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer first.Close()
	readEnvelope(t, first)

	second, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer second.Close()
	readEnvelope(t, second)

	second.WriteJSON(Command{Type: "FEED", FishID: 1, Amount: 0.5})
	if reply := readEnvelope(t, second); reply.Type != "error" {
		t.Fatalf("expected a watching client to be refused, got %s", reply.Type)
	}

	first.WriteJSON(Command{Type: "FEED", FishID: 1, Amount: 0.5})
	if reply := readEnvelope(t, first); reply.Type != "feed_result" {
		t.Fatalf("expected the first client to control, got %s", reply.Type)
	}

	first.Close()
	if role := readEnvelope(t, second); role.Type != "role" {
		t.Fatalf("expected control to pass to the remaining client, got %s", role.Type)
	}
	second.WriteJSON(Command{Type: "START"})
	deadline := time.Now().Add(2 * time.Second)
	for !env.eng.Clock().IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !env.eng.Clock().IsRunning() {
		t.Error("expected the promoted client to start the clock")
	}
}
