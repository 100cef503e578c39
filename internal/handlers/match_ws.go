// internal/handlers/match_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/setline/setline/internal/models"
	"github.com/setline/setline/internal/scoring"
	"github.com/sirupsen/logrus"
)

// matchStateMessage is the snapshot sent to a client right after it joins a
// match room. Reads bypass the mutation lane, so the snapshot may trail an
// in-flight command by one; the following broadcasts reconcile the client.
type matchStateMessage struct {
	Type  string        `json:"type"`
	Match *models.Match `json:"match"`
	Sets  []models.Set  `json:"sets"`
}

// MatchWSHandler upgrades the HTTP connection to WebSocket for live match
// scoring. The client connects to /match/ws/{match_id}, is authenticated via
// the auth_token cookie, joins the match room, and may then issue scoring
// commands (admins) or just receive broadcasts (everyone).
func MatchWSHandler(logger *logrus.Logger, srv *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/match/ws/"), "/")
		if len(pathParts) < 1 || pathParts[0] == "" {
			http.Error(w, "missing match_id in path (/match/ws/{match_id})", http.StatusBadRequest)
			return
		}
		matchID, err := uuid.Parse(pathParts[0])
		if err != nil {
			http.Error(w, "invalid match_id format", http.StatusBadRequest)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"score"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("websocket accept error for match %s: %v", matchID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "score" {
			c.Close(BadSubprotocolError, "client must speak the score subprotocol")
			return
		}

		userID, err := authenticateRequest(r)
		if err != nil {
			logger.Warnf("authentication failed for match %s: %v", matchID, err)
			c.Close(InvalidAuthTokenError, "authentication failed")
			return
		}
		logger.WithFields(logrus.Fields{
			"match":  matchID,
			"user":   userID,
			"remote": r.RemoteAddr,
		}).Info("scoring client connected")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Join before reading state: a mutation committed while the snapshot
		// is read lands in the subscriber's buffer and is delivered after it,
		// so the client misses nothing in the handshake window.
		sub := scoring.NewSubscriber(userID)
		srv.Coordinator.JoinMatch(matchID, sub)

		match, sets, err := srv.Coordinator.Snapshot(ctx, matchID)
		if err != nil {
			srv.Coordinator.Hub().LeaveAll(sub)
			c.Close(InvalidMatchIDError, "unknown match")
			return
		}

		// Initial state goes out before the writer starts draining, so every
		// buffered broadcast follows it.
		sendJSON(ctx, c, matchStateMessage{Type: "match_state", Match: match, Sets: sets})

		go writeEvents(ctx, c, sub, logger)

		readCommands(ctx, c, srv, sub, matchID, logger)

		srv.Coordinator.Hub().LeaveAll(sub)
		logger.WithFields(logrus.Fields{"match": matchID, "user": userID}).Info("scoring client disconnected")
	}
}

// writeEvents drains the subscriber's out channel onto the socket. Exits
// when the channel closes (LeaveAll) or the connection context ends.
func writeEvents(ctx context.Context, c *websocket.Conn, sub *scoring.Subscriber, logger *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Out:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warnf("failed to marshal event %s: %v", ev.Type, err)
				continue
			}
			writeCtx, cancelWrite := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancelWrite()
			if err != nil {
				logger.Warnf("failed to write event to user %s: %v", sub.UserID, err)
				return
			}
		}
	}
}

// readCommands reads scoring commands from the client until disconnect and
// dispatches them to the coordinator. Command failures are reported only to
// this connection as error events; they are never broadcast.
func readCommands(ctx context.Context, c *websocket.Conn, srv *Server, sub *scoring.Subscriber, connMatchID uuid.UUID, logger *logrus.Logger) {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				logger.Infof("websocket closed normally for user %s", sub.UserID)
			} else if !strings.Contains(err.Error(), "context canceled") {
				logger.Warnf("read error for user %s: %v (status: %d)", sub.UserID, err, closeStatus)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var cmd scoring.Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			logger.Warnf("invalid command json from user %s: %v", sub.UserID, err)
			sub.SendError("bad_request", "invalid JSON command")
			continue
		}

		dispatchCommand(ctx, srv, sub, connMatchID, cmd, logger)
	}
}

// dispatchCommand routes one decoded command. The switch is exhaustive over
// CommandType; unknown types produce an error event.
func dispatchCommand(ctx context.Context, srv *Server, sub *scoring.Subscriber, connMatchID uuid.UUID, cmd scoring.Command, logger *logrus.Logger) {
	coord := srv.Coordinator

	// Commands may omit match_id to mean the match this connection joined.
	matchID := cmd.MatchID
	if matchID == uuid.Nil {
		matchID = connMatchID
	}

	switch cmd.Type {
	case scoring.CommandJoinMatch:
		coord.JoinMatch(matchID, sub)

	case scoring.CommandLeaveMatch:
		coord.LeaveMatch(matchID, sub)

	case scoring.CommandCreateSet:
		if _, err := coord.CreateSet(ctx, sub.UserID, matchID, cmd.SetNumber); err != nil {
			logger.WithError(err).WithField("match", matchID).Debug("create_set rejected")
			sub.SendError(scoring.ErrorCode(err), err.Error())
		}

	case scoring.CommandUpdateSetScore:
		if cmd.ScoreA == nil || cmd.ScoreB == nil {
			sub.SendError("bad_request", "update_set_score requires score_a and score_b")
			return
		}
		if _, err := coord.UpdateSetScore(ctx, sub.UserID, cmd.SetID, *cmd.ScoreA, *cmd.ScoreB, cmd.Played); err != nil {
			logger.WithError(err).WithField("set", cmd.SetID).Debug("update_set_score rejected")
			sub.SendError(scoring.ErrorCode(err), err.Error())
		}

	case scoring.CommandUpdateMatch:
		fields := scoring.MatchFields{MatchDate: cmd.MatchDate}
		if err := coord.UpdateMatch(ctx, sub.UserID, matchID, fields); err != nil {
			logger.WithError(err).WithField("match", matchID).Debug("update_match rejected")
			sub.SendError(scoring.ErrorCode(err), err.Error())
		}

	case scoring.CommandPing:
		sub.SendEvent(scoring.Event{Type: scoring.EventPong})

	default:
		sub.SendError("bad_request", "unknown command type: "+string(cmd.Type))
	}
}

// sendJSON marshals a message and writes it to the socket with a timeout.
func sendJSON(ctx context.Context, c *websocket.Conn, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = c.Write(writeCtx, websocket.MessageText, data)
}
