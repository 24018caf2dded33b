package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tutorkit/tutorkit/internal/event"
	"github.com/tutorkit/tutorkit/internal/logging"
	"github.com/tutorkit/tutorkit/pkg/types"
)

// sseHeartbeatInterval keeps idle event streams alive through proxies.
const sseHeartbeatInterval = 30 * time.Second

// sseWriter wraps http.ResponseWriter for SSE.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	rc      *http.ResponseController
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}
	return &sseWriter{w: w, flusher: flusher, rc: http.NewResponseController(w)}, nil
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// writeData writes one `data: {json}` frame and flushes it immediately.
func (s *sseWriter) writeData(data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", jsonData); err != nil {
		return err
	}
	if err := s.rc.Flush(); err != nil {
		s.flusher.Flush()
	}
	return nil
}

func (s *sseWriter) writeHeartbeat() {
	fmt.Fprintf(s.w, ": heartbeat\n\n")
	s.flusher.Flush()
}

// sseSink adapts an sseWriter to the engine's Sink.
type sseSink struct {
	sse *sseWriter
}

func (s *sseSink) Send(ev types.WireEvent) error {
	return s.sse.writeData(ev)
}

// allEvents streams every bus event to the client as SSE.
func (s *Server) allEvents(w http.ResponseWriter, r *http.Request) {
	setSSEHeaders(w)

	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
	sse.flusher.Flush()

	events := make(chan event.Event, 16)
	unsub := s.bus.SubscribeAll(func(e event.Event) {
		select {
		case events <- e:
		default:
			logging.Warn().Str("eventType", string(e.Type)).Msg("SSE event dropped: channel full")
		}
	})
	defer unsub()

	ticker := time.NewTicker(sseHeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-events:
			if err := sse.writeData(e); err != nil {
				return
			}
		case <-ticker.C:
			sse.writeHeartbeat()
		}
	}
}
