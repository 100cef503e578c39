// internal/scoring/rules_test.go
package scoring

import (
	"testing"

	"github.com/google/uuid"
	"github.com/setline/setline/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMatch(bestOf int) *models.Match {
	return &models.Match{
		ID:              uuid.New(),
		RegistrationAID: uuid.New(),
		RegistrationBID: uuid.New(),
		BestOf:          bestOf,
	}
}

func playedSet(number, scoreA, scoreB int) models.Set {
	return models.Set{
		ID:        uuid.New(),
		SetNumber: number,
		ScoreA:    scoreA,
		ScoreB:    scoreB,
		Played:    true,
	}
}

func TestValidateSetCreationAssignsNextNumber(t *testing.T) {
	m := testMatch(5)
	sets := []models.Set{playedSet(1, 11, 5), playedSet(2, 9, 11)}

	number, err := ValidateSetCreation(m, sets, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, number)
}

func TestValidateSetCreationCapacity(t *testing.T) {
	m := testMatch(3)
	sets := []models.Set{playedSet(1, 11, 5), playedSet(2, 9, 11), playedSet(3, 11, 7)}

	_, err := ValidateSetCreation(m, sets, nil)
	assert.ErrorIs(t, err, ErrSetCapacityExceeded)
}

func TestValidateSetCreationDuplicateNumber(t *testing.T) {
	m := testMatch(5)
	sets := []models.Set{playedSet(1, 11, 5)}

	one := 1
	_, err := ValidateSetCreation(m, sets, &one)
	assert.ErrorIs(t, err, ErrDuplicateSetNumber)
}

func TestValidateSetCreationRequestedNumberOutOfRange(t *testing.T) {
	m := testMatch(3)

	four := 4
	_, err := ValidateSetCreation(m, nil, &four)
	assert.ErrorIs(t, err, ErrSetCapacityExceeded)

	zero := 0
	_, err = ValidateSetCreation(m, nil, &zero)
	assert.Error(t, err)
}

func TestValidateScoreUpdate(t *testing.T) {
	s := playedSet(1, 11, 5)
	assert.ErrorIs(t, ValidateScoreUpdate(&s, 12, 5), ErrSetAlreadyPlayed)

	open := models.Set{SetNumber: 1}
	assert.NoError(t, ValidateScoreUpdate(&open, 3, 2))
	assert.ErrorIs(t, ValidateScoreUpdate(&open, -1, 2), ErrInvalidScore)
	assert.ErrorIs(t, ValidateScoreUpdate(&open, 1, -2), ErrInvalidScore)
}

func TestSetWinner(t *testing.T) {
	assert.Equal(t, SideA, SetWinner(playedSet(1, 11, 5)))
	assert.Equal(t, SideB, SetWinner(playedSet(1, 5, 11)))
	assert.Equal(t, SideNone, SetWinner(playedSet(1, 10, 10)), "tied played set counts for neither side")

	unplayed := models.Set{ScoreA: 11, ScoreB: 0}
	assert.Equal(t, SideNone, SetWinner(unplayed))
}

func TestEvaluateMatchCompletionMajority(t *testing.T) {
	m := testMatch(3)

	// 1-1, no completion.
	out := EvaluateMatchCompletion(m, []models.Set{playedSet(1, 11, 5), playedSet(2, 9, 11)})
	assert.False(t, out.Completed)
	assert.Equal(t, 1, out.WinsA)
	assert.Equal(t, 1, out.WinsB)

	// 2-1, side A completes.
	out = EvaluateMatchCompletion(m, []models.Set{
		playedSet(1, 11, 5), playedSet(2, 9, 11), playedSet(3, 11, 7),
	})
	require.True(t, out.Completed)
	assert.Equal(t, SideA, out.Winner)
	assert.Equal(t, m.RegistrationAID, out.WinnerID(m))
}

func TestEvaluateMatchCompletionOrderIndependent(t *testing.T) {
	m := testMatch(3)
	sets := []models.Set{playedSet(3, 11, 7), playedSet(1, 11, 5)}

	// Two wins in any completion order decide a best-of-3.
	out := EvaluateMatchCompletion(m, sets)
	require.True(t, out.Completed)
	assert.Equal(t, SideA, out.Winner)
}

func TestEvaluateMatchCompletionTiedSetsDoNotCount(t *testing.T) {
	m := testMatch(3)
	sets := []models.Set{playedSet(1, 10, 10), playedSet(2, 10, 10), playedSet(3, 10, 10)}

	out := EvaluateMatchCompletion(m, sets)
	assert.False(t, out.Completed)
	assert.Zero(t, out.WinsA)
	assert.Zero(t, out.WinsB)
}

func TestEvaluateMatchCompletionIdempotent(t *testing.T) {
	m := testMatch(5)
	sets := []models.Set{playedSet(1, 11, 3), playedSet(2, 11, 6), playedSet(3, 11, 9)}

	first := EvaluateMatchCompletion(m, sets)
	second := EvaluateMatchCompletion(m, sets)
	assert.Equal(t, first, second)
	require.True(t, second.Completed)
	assert.Equal(t, SideA, second.Winner)
}
