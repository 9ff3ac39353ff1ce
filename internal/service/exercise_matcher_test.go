package service

import (
	"baisics/coach-api/internal/domain"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "db bench press", normalizeName("  DB   Bench-Press!! "))
	assert.Equal(t, "", normalizeName("--"))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("Bench Press", "bench-press"))
	assert.Equal(t, 0.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("squat", ""))

	// "cat" → {"  c"," ca","cat","at "}, "cap" → {"  c"," ca","cap","ap "}: 2 shared of 6
	assert.InDelta(t, 2.0/6.0, Similarity("cat", "cap"), 1e-9)

	near := Similarity("back squat", "Barbell Back Squat")
	far := Similarity("back squat", "Deadlift")
	assert.GreaterOrEqual(t, near, MatchThreshold)
	assert.Less(t, far, MatchThreshold)
	assert.Equal(t, Similarity("a b", "b a"), Similarity("b a", "a b"))
}

func TestRankExercises(t *testing.T) {
	library := []domain.Exercise{
		{ID: primitive.NewObjectID(), Name: "Incline Bench Press"},
		{ID: primitive.NewObjectID(), Name: "Bench Press"},
		{ID: primitive.NewObjectID(), Name: "Leg Press"},
		{ID: primitive.NewObjectID(), Name: "Chin Up"},
	}

	ranked := RankExercises("bench press", library, 0)
	require.Len(t, ranked, 3)
	assert.Equal(t, "Bench Press", ranked[0].Exercise.Name)
	assert.Equal(t, 1.0, ranked[0].Score)
	assert.Equal(t, "Incline Bench Press", ranked[1].Exercise.Name)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}

	assert.Len(t, RankExercises("bench press", library, 1), 1)
	assert.Empty(t, RankExercises("bench press", nil, 5))
}

func TestBestMatch(t *testing.T) {
	library := []domain.Exercise{{Name: "Romanian Deadlift"}, {Name: "Overhead Press"}}

	ex, score, ok := BestMatch("romanian deadlifts", library)
	require.True(t, ok)
	assert.Equal(t, "Romanian Deadlift", ex.Name)
	assert.GreaterOrEqual(t, score, MatchThreshold)

	_, _, ok = BestMatch("swimming", library)
	assert.False(t, ok)
}

func TestMatchExercises_Limits(t *testing.T) {
	repos := newTestRepos(t)
	coach := seedUser(t, repos, "coach@example.com", domain.RoleCoach)
	svc := NewExerciseService(repos.Exercises)
	ctx := context.Background()

	for _, name := range []string{"Squat", "Front Squat", "Box Squat", "Split Squat", "Goblet Squat", "Hack Squat", "Zercher Squat"} {
		_, err := svc.CreateExercise(ctx, coach.ID, CreateExerciseInput{Name: name})
		require.NoError(t, err)
	}

	matches, err := svc.MatchExercises(ctx, "squat", 0)
	require.NoError(t, err)
	assert.Len(t, matches, 5)
	assert.Equal(t, "Squat", matches[0].Exercise.Name)

	_, err = svc.MatchExercises(ctx, "   ", 5)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateExercise(ctx, coach.ID, CreateExerciseInput{Name: "Row", Difficulty: "Impossible"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.GetExerciseByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}
