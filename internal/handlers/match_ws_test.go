package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/setline/setline/internal/auth"
	"github.com/setline/setline/internal/models"
	"github.com/setline/setline/internal/scoring"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wsStore is a minimal in-memory Store for transport tests. The listSetsHook,
// when set, fires exactly once inside the next ListSets call, which lets a
// test commit-and-publish while a connecting client's snapshot is being read.
type wsStore struct {
	mu           sync.Mutex
	matches      map[uuid.UUID]*models.Match
	sets         map[uuid.UUID]*models.Set
	listSetsHook func()
}

func newWSStore() *wsStore {
	return &wsStore{
		matches: make(map[uuid.UUID]*models.Match),
		sets:    make(map[uuid.UUID]*models.Set),
	}
}

func (s *wsStore) addMatch(m models.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[m.ID] = &m
}

func (s *wsStore) setListSetsHook(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listSetsHook = fn
}

func (s *wsStore) GetMatch(_ context.Context, id uuid.UUID) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, scoring.ErrMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *wsStore) GetSet(_ context.Context, id uuid.UUID) (*models.Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[id]
	if !ok {
		return nil, scoring.ErrSetNotFound
	}
	cp := *set
	return &cp, nil
}

func (s *wsStore) ListSets(_ context.Context, matchID uuid.UUID) ([]models.Set, error) {
	s.mu.Lock()
	hook := s.listSetsHook
	s.listSetsHook = nil
	var sets []models.Set
	for _, set := range s.sets {
		if set.MatchID == matchID {
			sets = append(sets, *set)
		}
	}
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return sets, nil
}

func (s *wsStore) InsertSet(_ context.Context, set *models.Set) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *set
	s.sets[set.ID] = &cp
	return nil
}

func (s *wsStore) UpdateSetScore(_ context.Context, id uuid.UUID, scoreA, scoreB int, played bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[id]
	if !ok {
		return scoring.ErrSetNotFound
	}
	set.ScoreA = scoreA
	set.ScoreB = scoreB
	set.Played = played
	return nil
}

func (s *wsStore) UpdateMatchFields(_ context.Context, id uuid.UUID, fields scoring.MatchFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return scoring.ErrMatchNotFound
	}
	if fields.MatchDate != nil {
		m.MatchDate = fields.MatchDate
	}
	return nil
}

func (s *wsStore) SetMatchResult(_ context.Context, id uuid.UUID, winnerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return scoring.ErrMatchNotFound
	}
	m.Played = true
	m.WinnerID = &winnerID
	return nil
}

type grantAll struct{}

func (grantAll) CanMutateMatch(context.Context, uuid.UUID, uuid.UUID) bool { return true }

func newWSTestServer(t *testing.T, store *wsStore) (*httptest.Server, *scoring.Coordinator, string) {
	t.Helper()
	auth.Init()

	log := logrus.New()
	log.SetOutput(io.Discard)

	coord := scoring.NewCoordinator(store, grantAll{}, scoring.NewHub(log), log)
	srv := &Server{Coordinator: coord, Logger: log}

	mux := http.NewServeMux()
	mux.Handle("/match/ws/", MatchWSHandler(log, srv))
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	token, err := auth.CreateJWT(uuid.NewString())
	require.NoError(t, err)
	return ts, coord, token
}

func dialMatch(t *testing.T, ts *httptest.Server, matchID uuid.UUID, token string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, _, err := websocket.Dial(ctx, ts.URL+"/match/ws/"+matchID.String(), &websocket.DialOptions{
		Subprotocols: []string{"score"},
		HTTPHeader:   http.Header{"Cookie": []string{"auth_token=" + token}},
	})
	require.NoError(t, err)
	return c
}

// wsFrame covers both the initial match_state message and broadcast events.
type wsFrame struct {
	Type       string                     `json:"type"`
	SetCreated *scoring.SetCreatedPayload `json:"set_created,omitempty"`
}

func readFrame(t *testing.T, ctx context.Context, c *websocket.Conn) wsFrame {
	t.Helper()
	_, data, err := c.Read(ctx)
	require.NoError(t, err)
	var f wsFrame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func TestMatchWSDeliversSnapshotBeforeHandshakeWindowEvents(t *testing.T) {
	store := newWSStore()
	match := models.Match{
		ID:              uuid.New(),
		RegistrationAID: uuid.New(),
		RegistrationBID: uuid.New(),
		BestOf:          3,
	}
	store.addMatch(match)

	ts, coord, token := newWSTestServer(t, store)

	// A set committed while the connecting client's snapshot is being read.
	// The client is already subscribed at that point, so the broadcast must
	// arrive right after the initial state rather than be lost.
	lateSet := models.Set{ID: uuid.New(), MatchID: match.ID, SetNumber: 1}
	store.setListSetsHook(func() {
		coord.Hub().Publish(match.ID, scoring.Event{
			Type:       scoring.EventSetCreated,
			SetCreated: &scoring.SetCreatedPayload{Set: lateSet},
		})
	})

	c := dialMatch(t, ts, match.ID, token)
	defer c.Close(websocket.StatusNormalClosure, "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first := readFrame(t, ctx, c)
	assert.Equal(t, "match_state", first.Type)

	second := readFrame(t, ctx, c)
	assert.Equal(t, string(scoring.EventSetCreated), second.Type)
	require.NotNil(t, second.SetCreated)
	assert.Equal(t, lateSet.ID, second.SetCreated.Set.ID)
}

func TestMatchWSCreateSetCommandRoundTrip(t *testing.T) {
	store := newWSStore()
	match := models.Match{
		ID:              uuid.New(),
		RegistrationAID: uuid.New(),
		RegistrationBID: uuid.New(),
		BestOf:          3,
	}
	store.addMatch(match)

	ts, _, token := newWSTestServer(t, store)
	c := dialMatch(t, ts, match.ID, token)
	defer c.Close(websocket.StatusNormalClosure, "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first := readFrame(t, ctx, c)
	require.Equal(t, "match_state", first.Type)

	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte(`{"type":"create_set"}`)))

	ev := readFrame(t, ctx, c)
	assert.Equal(t, string(scoring.EventSetCreated), ev.Type)
	require.NotNil(t, ev.SetCreated)
	assert.Equal(t, 1, ev.SetCreated.Set.SetNumber)
}

func TestMatchWSUnknownMatchClosesWithCode(t *testing.T) {
	store := newWSStore()
	ts, _, token := newWSTestServer(t, store)

	c := dialMatch(t, ts, uuid.New(), token)
	defer c.Close(websocket.StatusNormalClosure, "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, _, err := c.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusCode(InvalidMatchIDError), websocket.CloseStatus(err))
}
