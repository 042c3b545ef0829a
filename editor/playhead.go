package editor

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"reeledit/composition"
	"reeledit/playhead"
	"reeledit/timeline"
)

const playheadWriteWait = time.Second

// frameReport is pushed by the browser player.
type frameReport struct {
	Frame int `json:"frame"`
}

// markerUpdate moves the on-screen play-head and highlights the blocks
// under it.
type markerUpdate struct {
	Frame    int      `json:"frame"`
	Total    int      `json:"total"`
	Fraction float64  `json:"fraction"`
	Left     string   `json:"left"`
	Active   []string `json:"active"`
}

// trackState follows the session's timeline through store notifications so
// the stream never reads the store on its own cadence.
type trackState struct {
	mu    sync.Mutex
	items int
	comp  composition.Composition
	total atomic.Int64
}

func (t *trackState) update(snap timeline.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Stores only grow; an older snapshot must not replace a newer one.
	n := len(snap.Clips) + len(snap.TextOverlays)
	if n < t.items {
		return
	}
	t.items = n
	t.comp = composition.New(snap)
	t.total.Store(int64(snap.TotalDuration))
}

func (t *trackState) Total() int {
	return int(t.total.Load())
}

func (t *trackState) marker(s playhead.Sample) markerUpdate {
	t.mu.Lock()
	active := t.comp.ActiveAt(s.Frame)
	t.mu.Unlock()

	ids := make([]string, len(active))
	for i, seg := range active {
		ids[i] = seg.ID
	}
	return markerUpdate{
		Frame:    s.Frame,
		Total:    s.Total,
		Fraction: s.Fraction(),
		Left:     s.Left(),
		Active:   ids,
	}
}

type markerWriter interface {
	SetWriteDeadline(t time.Time) error
	WriteJSON(v any) error
}

// writeMarker sends one update. Any error ends the stream.
func (s *Server) writeMarker(conn markerWriter, sessionID string, update markerUpdate) error {
	if err := conn.SetWriteDeadline(time.Now().Add(playheadWriteWait)); err != nil {
		s.log.Debugw("playhead write deadline", "session", sessionID, "error", err)
		return err
	}
	if err := conn.WriteJSON(update); err != nil {
		s.log.Debugw("playhead write", "session", sessionID, "error", err)
		return err
	}
	return nil
}

// handlePlayhead upgrades to a websocket. The client reports frames as it
// plays; a poller samples the latest report at the configured cadence and
// sends marker updates back whenever the frame or the timeline length
// changes. Closing the socket stops the poller.
func (s *Server) handlePlayhead(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnw("playhead upgrade", "session", sess.ID, "error", err)
		return
	}
	defer conn.Close()

	detach := s.sessions.attach(sess)
	defer detach()

	track := &trackState{}
	unsubscribe := sess.Store.Subscribe(track.update)
	defer unsubscribe()
	track.update(sess.Store.Snapshot())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var writeMu sync.Mutex
	source := &playhead.Reported{}
	poller := &playhead.Poller{
		Source:   source,
		Total:    track.Total,
		Interval: s.cfg.PollInterval,
		OnSample: func(sample playhead.Sample) {
			writeMu.Lock()
			defer writeMu.Unlock()
			if err := s.writeMarker(conn, sess.ID, track.marker(sample)); err != nil {
				cancel()
			}
		},
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Debugw("playhead poller", "session", sess.ID, "error", err)
		}
	}()

	s.log.Debugw("playhead attached", "session", sess.ID)
	for {
		var report frameReport
		if err := conn.ReadJSON(&report); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debugw("playhead read", "session", sess.ID, "error", err)
			}
			break
		}
		if report.Frame >= 0 {
			source.Report(report.Frame)
		}
	}

	cancel()
	<-done
	s.log.Debugw("playhead detached", "session", sess.ID)
}
