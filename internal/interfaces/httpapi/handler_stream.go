package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fitpulse/ranking-engine/internal/usecase"
)

const (
	streamWriteTimeout = 10 * time.Second
	streamPingInterval = 30 * time.Second
	streamEntryLimit   = usecase.MaxLeaderboardLimit
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(*http.Request) bool {
		// Browser origin enforcement happens at the CORS layer for the
		// REST surface; the stream carries only public leaderboard data.
		return true
	},
}

// StreamLeaderboard upgrades to a websocket and pushes a leaderboard event
// on connect and after every recompute of the requested cohort.
func (h *Handler) StreamLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StreamLeaderboard")
	defer span.End()

	cohort, err := cohortFromQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if h.feed == nil {
		writeError(ctx, w, fmt.Errorf("%w: leaderboard stream is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	if h.aggregatorService != nil {
		if err := h.aggregatorService.EnsureFresh(ctx, cohort); err != nil {
			h.logger.WarnContext(ctx, "ensure fresh before stream failed", "type", string(cohort), "error", err)
		}
	}

	conn, err := streamUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.WarnContext(ctx, "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	snapshots, cancel := h.feed.Subscribe(cohort)
	defer cancel()

	if latest, ok := h.feed.Latest(cohort); ok {
		if err := writeStreamEvent(conn, snapshotToStreamEventDTO(latest, streamEntryLimit)); err != nil {
			return
		}
	}

	// Reader goroutine: drains control frames and unblocks on disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()

	for {
		select {
		case snapshot, ok := <-snapshots:
			if !ok {
				return
			}
			if err := writeStreamEvent(conn, snapshotToStreamEventDTO(snapshot, streamEntryLimit)); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteTimeout)); err != nil {
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func writeStreamEvent(conn *websocket.Conn, event leaderboardStreamEventDTO) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return conn.WriteJSON(event)
}
