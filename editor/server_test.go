package editor

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gorilla/websocket"

	"reeledit/composition"
	"reeledit/config"
	"reeledit/gate"
	"reeledit/script"
	"reeledit/timeline"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.PollInterval = 5 * time.Millisecond
	srv, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func createSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	res, err := http.Post(ts.URL+"/api/sessions", "application/json", nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create session status = %d", res.StatusCode)
	}
	var body sessionResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return body.SessionID
}

func postJSON(t *testing.T, url string, body string, out any) int {
	t.Helper()
	res, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer res.Body.Close()
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return res.StatusCode
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return res.StatusCode
}

type appendResult struct {
	Item struct {
		ID    string `json:"id"`
		Start int    `json:"start"`
		Text  string `json:"text"`
	} `json:"item"`
	Timeline TimelineView `json:"timeline"`
}

func TestAppendFlow(t *testing.T) {
	_, ts := newTestServer(t)
	api := ts.URL + "/api/sessions/" + createSession(t, ts)

	var r1, r2, r3 appendResult
	if code := postJSON(t, api+"/clips", "", &r1); code != http.StatusCreated {
		t.Fatalf("add clip status = %d", code)
	}
	postJSON(t, api+"/texts", "", &r2)
	postJSON(t, api+"/clips", "", &r3)

	if r1.Item.Start != 0 || r2.Item.Start != 300 || r3.Item.Start != 400 {
		t.Errorf("starts = %d, %d, %d; want 0, 300, 400", r1.Item.Start, r2.Item.Start, r3.Item.Start)
	}
	if r2.Item.Text != "Text 1" {
		t.Errorf("overlay text = %q", r2.Item.Text)
	}
	if r3.Timeline.TotalDuration != 700 || len(r3.Timeline.Blocks) != 3 {
		t.Errorf("timeline = %+v", r3.Timeline)
	}

	var view TimelineView
	if code := getJSON(t, api+"/timeline", &view); code != http.StatusOK {
		t.Fatalf("timeline status = %d", code)
	}
	if view.Blocks[1].Label != "Clip 2" || view.Blocks[2].Label != "Text 1" {
		t.Errorf("labels = %q, %q", view.Blocks[1].Label, view.Blocks[2].Label)
	}

	var comp composition.Composition
	getJSON(t, api+"/composition", &comp)
	if comp.DurationInFrames != 700 || comp.FPS != 30 || len(comp.Segments) != 3 {
		t.Errorf("composition = %+v", comp)
	}
	if comp.Segments[1].Kind != composition.SegmentText || comp.FadeInFrames != 30 {
		t.Errorf("segment 1 = %+v", comp.Segments[1])
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	_, ts := newTestServer(t)
	a := ts.URL + "/api/sessions/" + createSession(t, ts)
	b := ts.URL + "/api/sessions/" + createSession(t, ts)

	postJSON(t, a+"/clips", "", nil)
	postJSON(t, a+"/clips", "", nil)

	var view TimelineView
	getJSON(t, b+"/timeline", &view)
	if view.TotalDuration != 0 || view.PlayerDuration != 1 || len(view.Blocks) != 0 {
		t.Errorf("fresh session has %+v", view)
	}
}

func TestUnknownSession(t *testing.T) {
	_, ts := newTestServer(t)
	var body errorResponse
	code := postJSON(t, ts.URL+"/api/sessions/nope/clips", "", &body)
	if code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", code)
	}
	if !strings.Contains(body.Error, "session not found") {
		t.Errorf("error = %q", body.Error)
	}
}

func TestDropSession(t *testing.T) {
	srv, ts := newTestServer(t)
	id := createSession(t, ts)

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/sessions/"+id, nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", res.StatusCode)
	}
	if srv.Sessions().Len() != 0 {
		t.Errorf("expected no live sessions, got %d", srv.Sessions().Len())
	}
	if code := getJSON(t, ts.URL+"/api/sessions/"+id+"/timeline", nil); code != http.StatusNotFound {
		t.Errorf("dropped session status = %d, want 404", code)
	}
}

func TestViewport(t *testing.T) {
	_, ts := newTestServer(t)
	api := ts.URL + "/api/sessions/" + createSession(t, ts)

	steps := []struct {
		width   int
		mode    gate.Mode
		changed bool
	}{
		{1440, gate.ModeDesktop, true},
		{769, gate.ModeDesktop, false},
		{768, gate.ModeBlocked, true},
		{1024, gate.ModeDesktop, true},
	}
	for _, s := range steps {
		var res viewportResponse
		body := `{"width":` + itoa(s.width) + `}`
		if code := postJSON(t, api+"/viewport", body, &res); code != http.StatusOK {
			t.Fatalf("viewport status = %d", code)
		}
		if res.Mode != s.mode || res.Changed != s.changed || res.Threshold != 768 {
			t.Errorf("viewport %d = %+v, want mode %s changed %v", s.width, res, s.mode, s.changed)
		}
	}

	for _, bad := range []string{`{"width":"wide"}`, `not json`, `{"width":-1}`, `{"height":5}`} {
		if code := postJSON(t, api+"/viewport", bad, nil); code != http.StatusBadRequest {
			t.Errorf("body %s status = %d, want 400", bad, code)
		}
	}
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestIndexPage(t *testing.T) {
	srv, ts := newTestServer(t)

	tests := []struct {
		query string
		mode  string
	}{
		{"", "desktop"},
		{"?width=1280", "desktop"},
		{"?width=768", "blocked"},
	}
	for _, tt := range tests {
		res, err := http.Get(ts.URL + "/" + tt.query)
		if err != nil {
			t.Fatalf("GET /: %v", err)
		}
		body, _ := io.ReadAll(res.Body)
		res.Body.Close()

		page := string(body)
		if !strings.Contains(page, `data-mode="`+tt.mode+`"`) {
			t.Errorf("query %q: page not in %s mode", tt.query, tt.mode)
		}
		// An empty timeline plays a single frame, so the seek range ends at 0.
		if !strings.Contains(page, `id="seek" type="range" min="0" max="0"`) {
			t.Errorf("query %q: seek range does not end on the last frame", tt.query)
		}
		for _, want := range []string{"Loading...", "Add Clip", "Add Text", "React Video Editor", "Mobile View Not Supported"} {
			if !strings.Contains(page, want) {
				t.Errorf("page missing %q", want)
			}
		}
	}
	if srv.Sessions().Len() != len(tests) {
		t.Errorf("each page load should mint a session; got %d", srv.Sessions().Len())
	}

	res, err := http.Get(ts.URL + "/static/editor.js")
	if err != nil {
		t.Fatalf("GET editor.js: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("editor.js status = %d", res.StatusCode)
	}
}

func TestExport(t *testing.T) {
	_, ts := newTestServer(t)
	api := ts.URL + "/api/sessions/" + createSession(t, ts)
	postJSON(t, api+"/clips", "", nil)
	postJSON(t, api+"/texts", "", nil)

	res, err := http.Get(api + "/export.fcpxml")
	if err != nil {
		t.Fatalf("GET export: %v", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	if res.Header.Get("Content-Type") != "application/xml" {
		t.Errorf("content type = %q", res.Header.Get("Content-Type"))
	}
	for _, want := range []string{"<!DOCTYPE fcpxml>", "<asset-clip", "<title", `duration="400/30s"`} {
		if !bytes.Contains(body, []byte(want)) {
			t.Errorf("export missing %q", want)
		}
	}
}

func TestBrotliResponses(t *testing.T) {
	_, ts := newTestServer(t)
	api := ts.URL + "/api/sessions/" + createSession(t, ts)

	req, _ := http.NewRequest(http.MethodGet, api+"/timeline", nil)
	req.Header.Set("Accept-Encoding", "br")
	// A custom Accept-Encoding turns off the transport's transparent gzip.
	res, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		t.Fatalf("GET timeline: %v", err)
	}
	defer res.Body.Close()
	if res.Header.Get("Content-Encoding") != "br" {
		t.Fatalf("Content-Encoding = %q, want br", res.Header.Get("Content-Encoding"))
	}
	var view TimelineView
	if err := json.NewDecoder(brotli.NewReader(res.Body)).Decode(&view); err != nil {
		t.Fatalf("decode brotli body: %v", err)
	}
	if view.PlayerDuration != 1 {
		t.Errorf("PlayerDuration = %d, want 1", view.PlayerDuration)
	}
}

func readMarker(t *testing.T, conn *websocket.Conn) markerUpdate {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var update markerUpdate
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("read: %v", err)
	}
	return update
}

func TestPlayheadStream(t *testing.T) {
	_, ts := newTestServer(t)
	id := createSession(t, ts)
	api := ts.URL + "/api/sessions/" + id
	postJSON(t, api+"/clips", "", nil) // total 300

	wsURL := "ws" + strings.TrimPrefix(api, "http") + "/playhead"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(frameReport{Frame: 150}); err != nil {
		t.Fatalf("write: %v", err)
	}
	update := readMarker(t, conn)
	if update.Frame != 150 || update.Total != 300 || update.Fraction != 0.5 || update.Left != "50%" {
		t.Errorf("update = %+v, want frame 150 of 300 at 50%%", update)
	}
	if len(update.Active) != 1 || update.Active[0] != "clip-1" {
		t.Errorf("active = %v, want [clip-1]", update.Active)
	}

	// Paused on frame 150 while the timeline doubles: the marker must move.
	postJSON(t, api+"/clips", "", nil)
	update = readMarker(t, conn)
	if update.Frame != 150 || update.Total != 600 || update.Fraction != 0.25 || update.Left != "25%" {
		t.Errorf("update after append = %+v, want frame 150 of 600 at 25%%", update)
	}

	if err := conn.WriteJSON(frameReport{Frame: 300}); err != nil {
		t.Fatalf("write: %v", err)
	}
	update = readMarker(t, conn)
	if update.Frame != 300 || update.Fraction != 0.5 {
		t.Errorf("update = %+v, want frame 300 fraction 0.5", update)
	}
	if len(update.Active) != 1 || update.Active[0] != "clip-2" {
		t.Errorf("active = %v, want [clip-2]", update.Active)
	}
}

func TestScriptDownload(t *testing.T) {
	_, ts := newTestServer(t)
	api := ts.URL + "/api/sessions/" + createSession(t, ts)
	postJSON(t, api+"/clips", "", nil)
	postJSON(t, api+"/texts", "", nil)
	postJSON(t, api+"/clips", "", nil)

	res, err := http.Get(api + "/script.yaml")
	if err != nil {
		t.Fatalf("GET script: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK || res.Header.Get("Content-Type") != "application/yaml" {
		t.Fatalf("status %d, content type %q", res.StatusCode, res.Header.Get("Content-Type"))
	}
	body, _ := io.ReadAll(res.Body)

	sc, err := script.Parse(body)
	if err != nil {
		t.Fatalf("downloaded script does not parse: %v\n%s", err, body)
	}
	snap := sc.Apply(timeline.NewStore(sc.StoreOptions()...))
	if snap.TotalDuration != 700 || len(snap.Clips) != 2 || len(snap.TextOverlays) != 1 {
		t.Errorf("replayed snapshot = %+v", snap)
	}
	if snap.TextOverlays[0].Start != 300 {
		t.Errorf("overlay start = %d, want 300", snap.TextOverlays[0].Start)
	}
}

func TestPlayheadUnknownSession(t *testing.T) {
	_, ts := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/sessions/nope/playhead"
	_, res, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if res == nil || res.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 response, got %v", res)
	}
}
