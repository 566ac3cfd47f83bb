package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/syedarman1/screenme-sub001/internal/domain"
	"github.com/syedarman1/screenme-sub001/internal/service/chat"
)

type chatStreamRequest struct {
	Messages []chat.WireMessage `json:"messages"`
}

type deltaEvent struct {
	Delta string `json:"delta"`
}

// sseWriter writes Server-Sent Events. Headers are sent lazily so a failure
// before the first fragment can still be reported with a JSON status code.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func (s *sseWriter) start() {
	if s.started {
		return
	}
	s.started = true
	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	s.w.WriteHeader(http.StatusOK)
}

func (s *sseWriter) send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	s.start()
	if event != "" {
		if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *sseWriter) done() {
	s.start()
	_, _ = fmt.Fprint(s.w, "data: [DONE]\n\n")
	s.flusher.Flush()
}

// chatStream relays completion fragments as {"delta": "..."} events and ends
// with [DONE]. Errors after the first fragment are sent as an "error" event.
func (h *handlers) chatStream(w http.ResponseWriter, r *http.Request) {
	var req chatStreamRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, domain.Internal(fmt.Errorf("streaming not supported by %T", w)))
		return
	}
	sse := &sseWriter{w: w, flusher: flusher}

	err := h.app.Chat.Stream(r.Context(), requestID(r), req.Messages, func(fragment string) error {
		return sse.send("", deltaEvent{Delta: fragment})
	})
	if err != nil {
		if !sse.started {
			writeError(w, r, err)
			return
		}
		if r.Context().Err() != nil {
			return
		}
		if sendErr := sse.send("error", errorBody(domain.AsError(err))); sendErr != nil {
			log.Debug().Err(sendErr).Str("requestId", requestID(r)).Msg("Could not deliver stream error")
		}
		return
	}
	sse.done()
}
