// internal/scoring/coordinator.go
package scoring

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/setline/setline/internal/cache"
	"github.com/setline/setline/internal/models"
	"github.com/sirupsen/logrus"
)

// Coordinator is the authoritative entry point for all live scoring
// commands. Every mutating command is authorized, admitted to the match's
// lane, validated against the rules, persisted, and only then broadcast, so
// subscribers never observe a change that did not commit.
type Coordinator struct {
	store Store
	auth  Authorizer
	hub   *Hub
	lanes *LaneSet
	log   *logrus.Logger
}

func NewCoordinator(store Store, auth Authorizer, hub *Hub, log *logrus.Logger) *Coordinator {
	return &Coordinator{
		store: store,
		auth:  auth,
		hub:   hub,
		lanes: NewLaneSet(),
		log:   log,
	}
}

// Hub exposes the broadcast hub for the transport layer's join bookkeeping.
func (c *Coordinator) Hub() *Hub { return c.hub }

// JoinMatch subscribes a connection to a match room. Read-only bookkeeping:
// no lane, no authorization.
func (c *Coordinator) JoinMatch(matchID uuid.UUID, sub *Subscriber) {
	c.hub.Join(matchID, sub)
}

// LeaveMatch removes a connection from a match room.
func (c *Coordinator) LeaveMatch(matchID uuid.UUID, sub *Subscriber) {
	c.hub.Leave(matchID, sub)
}

// CreateSet adds a set to a match. If setNumber is nil the next free number
// is assigned. The new set starts 0-0, unplayed.
func (c *Coordinator) CreateSet(ctx context.Context, caller uuid.UUID, matchID uuid.UUID, setNumber *int) (*models.Set, error) {
	if !c.auth.CanMutateMatch(ctx, caller, matchID) {
		return nil, ErrNotAuthorized
	}

	var created *models.Set
	err := c.lanes.WithMatchLock(ctx, matchID, func(ctx context.Context) error {
		match, err := c.store.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		sets, err := c.store.ListSets(ctx, matchID)
		if err != nil {
			return err
		}
		number, err := ValidateSetCreation(match, sets, setNumber)
		if err != nil {
			return err
		}

		set := &models.Set{
			ID:        uuid.New(),
			MatchID:   matchID,
			SetNumber: number,
		}
		if err := c.store.InsertSet(ctx, set); err != nil {
			return err
		}
		created = set

		c.hub.Publish(matchID, Event{
			Type:       EventSetCreated,
			SetCreated: &SetCreatedPayload{Set: *set},
		})
		c.logAction(caller, matchID, "create_set", map[string]interface{}{
			"set_id":     set.ID.String(),
			"set_number": number,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateSetScore applies new scores to a set and optionally marks it played.
// Marking a set played may in turn complete the match; both transitions are
// persisted and broadcast inside the same lane hold, so subscribers see
// score_updated, set_completed and match_completed in that order.
func (c *Coordinator) UpdateSetScore(ctx context.Context, caller uuid.UUID, setID uuid.UUID, scoreA, scoreB int, played bool) (*models.Set, error) {
	// Resolve the owning match for the lane, but answer authorization before
	// set existence so callers cannot probe for set IDs.
	probe, probeErr := c.store.GetSet(ctx, setID)
	matchID := uuid.Nil
	if probeErr == nil {
		matchID = probe.MatchID
	}
	if !c.auth.CanMutateMatch(ctx, caller, matchID) {
		return nil, ErrNotAuthorized
	}
	if probeErr != nil {
		return nil, probeErr
	}

	var updated *models.Set
	err := c.lanes.WithMatchLock(ctx, matchID, func(ctx context.Context) error {
		// Re-read inside the lane; the probe above may be one command stale.
		set, err := c.store.GetSet(ctx, setID)
		if err != nil {
			return err
		}
		match, err := c.store.GetMatch(ctx, set.MatchID)
		if err != nil {
			return err
		}
		if err := ValidateScoreUpdate(set, scoreA, scoreB); err != nil {
			return err
		}

		if err := c.store.UpdateSetScore(ctx, setID, scoreA, scoreB, played); err != nil {
			return err
		}
		set.ScoreA = scoreA
		set.ScoreB = scoreB
		set.Played = played
		updated = set

		c.hub.Publish(match.ID, Event{
			Type: EventScoreUpdated,
			ScoreUpdated: &ScoreUpdatedPayload{
				SetID:  setID,
				ScoreA: scoreA,
				ScoreB: scoreB,
				Played: played,
			},
		})
		c.logAction(caller, match.ID, "update_set_score", map[string]interface{}{
			"set_id":  setID.String(),
			"score_a": scoreA,
			"score_b": scoreB,
			"played":  played,
		})

		if !played {
			return nil
		}
		c.hub.Publish(match.ID, Event{
			Type:         EventSetCompleted,
			SetCompleted: &SetCompletedPayload{SetID: setID, SetNumber: set.SetNumber},
		})

		return c.finishMatchIfDecided(ctx, caller, match)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// finishMatchIfDecided re-evaluates match completion and, if a side has
// reached the majority, persists the result and broadcasts it. Runs inside
// the match lane. An already-completed match is left untouched.
func (c *Coordinator) finishMatchIfDecided(ctx context.Context, caller uuid.UUID, match *models.Match) error {
	if match.Played {
		return nil
	}
	sets, err := c.store.ListSets(ctx, match.ID)
	if err != nil {
		return err
	}
	outcome := EvaluateMatchCompletion(match, sets)
	if !outcome.Completed {
		return nil
	}

	winnerID := outcome.WinnerID(match)
	if err := c.store.SetMatchResult(ctx, match.ID, winnerID); err != nil {
		return err
	}

	c.hub.Publish(match.ID, Event{
		Type:           EventMatchCompleted,
		MatchCompleted: &MatchCompletedPayload{MatchID: match.ID, WinnerID: winnerID},
	})
	c.logAction(caller, match.ID, "match_completed", map[string]interface{}{
		"winner_id": winnerID.String(),
		"wins_a":    outcome.WinsA,
		"wins_b":    outcome.WinsB,
	})
	return nil
}

// UpdateMatch changes non-scoring match fields, currently the scheduled
// date.
func (c *Coordinator) UpdateMatch(ctx context.Context, caller uuid.UUID, matchID uuid.UUID, fields MatchFields) error {
	if !c.auth.CanMutateMatch(ctx, caller, matchID) {
		return ErrNotAuthorized
	}

	return c.lanes.WithMatchLock(ctx, matchID, func(ctx context.Context) error {
		if _, err := c.store.GetMatch(ctx, matchID); err != nil {
			return err
		}
		if err := c.store.UpdateMatchFields(ctx, matchID, fields); err != nil {
			return err
		}
		c.hub.Publish(matchID, Event{
			Type: EventMatchUpdated,
			MatchUpdated: &MatchUpdatedPayload{
				MatchID:   matchID,
				MatchDate: fields.MatchDate,
			},
		})
		c.logAction(caller, matchID, "update_match", nil)
		return nil
	})
}

// Snapshot returns a match and its sets without entering the lane. The view
// may trail an in-flight write by one command; the following broadcast
// reconciles the reader.
func (c *Coordinator) Snapshot(ctx context.Context, matchID uuid.UUID) (*models.Match, []models.Set, error) {
	match, err := c.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	sets, err := c.store.ListSets(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	return match, sets, nil
}

// logAction pushes an audit record to the historian queue. Best effort and
// asynchronous: scoring never waits on redis, and a missing client (tests,
// degraded deployments) is a silent no-op.
func (c *Coordinator) logAction(actor uuid.UUID, matchID uuid.UUID, action string, payload map[string]interface{}) {
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.ScoreActionRecord{
		MatchID:       matchID,
		ActorUserID:   actor,
		ActionType:    action,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func(rec cache.ScoreActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cache.Rdb == nil {
			return
		}
		if err := cache.PublishScoreAction(ctx, rec); err != nil {
			c.log.WithError(err).WithField("match", rec.MatchID).Warn("failed to enqueue score action")
		}
	}(record)
}
