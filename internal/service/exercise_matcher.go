package service

import (
	"baisics/coach-api/internal/domain"
	"sort"
	"strings"
	"unicode"
)

// MatchThreshold is the minimum similarity at which a free-text exercise
// name is linked to a library exercise.
const MatchThreshold = 0.45

// normalizeName lowercases s and collapses every run of non-alphanumerics
// into a single space.
func normalizeName(s string) string {
	var b strings.Builder
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// trigrams extracts the set of word trigrams the way pg_trgm does: each word
// is padded with two leading blanks and one trailing blank.
func trigrams(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range strings.Fields(normalizeName(s)) {
		padded := []rune("  " + word + " ")
		for i := 0; i+3 <= len(padded); i++ {
			set[string(padded[i:i+3])] = struct{}{}
		}
	}
	return set
}

// Similarity is |A∩B| / |A∪B| over the trigram sets of a and b, in [0, 1].
func Similarity(a, b string) float64 {
	if normalizeName(a) == normalizeName(b) {
		if normalizeName(a) == "" {
			return 0
		}
		return 1
	}
	ta, tb := trigrams(a), trigrams(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for g := range ta {
		if _, ok := tb[g]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(ta)+len(tb)-shared)
}

// RankExercises scores every library entry against query, best first.
// Entries scoring zero are dropped; limit <= 0 keeps all.
func RankExercises(query string, library []domain.Exercise, limit int) []domain.ExerciseMatch {
	matches := make([]domain.ExerciseMatch, 0, len(library))
	for _, ex := range library {
		if score := Similarity(query, ex.Name); score > 0 {
			matches = append(matches, domain.ExerciseMatch{Exercise: ex, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Exercise.Name < matches[j].Exercise.Name
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// BestMatch returns the top-ranked exercise when it clears MatchThreshold.
func BestMatch(name string, library []domain.Exercise) (*domain.Exercise, float64, bool) {
	ranked := RankExercises(name, library, 1)
	if len(ranked) == 0 || ranked[0].Score < MatchThreshold {
		return nil, 0, false
	}
	ex := ranked[0].Exercise
	return &ex, ranked[0].Score, true
}
