package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/CoderSATTY/Jobs-Tinder/internal/feed"
)

// wsRequest is a client frame on the jobs stream.
type wsRequest struct {
	Type string `json:"type"`
}

// wsJobFrame is a served job on the jobs stream.
type wsJobFrame struct {
	Type string          `json:"type"`
	Job  *feed.ScoredJob `json:"job,omitempty"`
}

const (
	frameNextJob = "NEXT_JOB"
	frameJob     = "JOB"
	frameEnd     = "END"
)

// handleJobsWS serves ranked jobs one at a time over a websocket. The client
// sends NEXT_JOB frames; each one is answered with a JOB frame, or END when
// the list is exhausted. Authentication is a token query parameter; a bad
// token closes the connection with policy violation (1008).
func (s *Server) handleJobsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debugw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	userID, err := s.jwtService.ValidateToken(r.URL.Query().Get("token"))
	if err != nil {
		s.closeWS(conn, websocket.ClosePolicyViolation, "invalid token")
		return
	}

	stream, err := s.feed.OpenStream(r.Context(), userID)
	if err != nil {
		s.closeWS(conn, websocket.CloseInternalServerErr, "failed to open stream")
		return
	}

	s.log.Infow("jobs stream opened", "user_id", userID)

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debugw("jobs stream read failed", "user_id", userID, "error", err)
			}
			return
		}
		if req.Type != frameNextJob {
			continue
		}

		if err := s.serveNextJob(r, conn, stream); err != nil {
			s.log.Debugw("jobs stream write failed", "user_id", userID, "error", err)
			return
		}
	}
}

// serveNextJob answers one NEXT_JOB frame. Stale ranked entries advance the
// cursor without producing a frame, so keep pulling until there is a job to
// send or the list ends. This means one request can advance the cursor past
// several consecutive stale entries; that is deliberate. Answering a stale
// entry with silence would leave the client waiting on a frame that never
// comes, and the skipped entries point at deleted documents no later
// request could serve either.
func (s *Server) serveNextJob(r *http.Request, conn *websocket.Conn, stream *feed.Stream) error {
	for {
		job, end, err := stream.Next(r.Context())
		if err != nil {
			return err
		}
		if end {
			return conn.WriteJSON(wsJobFrame{Type: frameEnd})
		}
		if job == nil {
			continue
		}
		return conn.WriteJSON(wsJobFrame{Type: frameJob, Job: job})
	}
}

func (s *Server) closeWS(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
}
