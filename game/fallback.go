// game/fallback.go
package game

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/jetchart/impostor/words"
)

// Fallback one-word descriptions keyed by difficulty, used when the
// suggestion service is unreachable or returns garbage.
var fallbackDescriptions = map[words.Difficulty][]string{
	words.Facil:   {"Conocido", "Común", "Popular", "Típico", "Clásico"},
	words.Normal:  {"Cotidiano", "Familiar", "Habitual", "Frecuente", "Normal"},
	words.Dificil: {"Interesante", "Particular", "Especial", "Curioso", "Notable"},
	words.Leyenda: {"Abstracto", "Complejo", "Único", "Raro", "Peculiar"},
}

// Modifiers tried when a suggestion duplicates the transcript.
var fallbackModifiers = []string{
	"Relacionado", "Conectado", "Vinculado", "Asociado",
	"Similar", "Cercano", "Parecido", "Afin",
}

// fallbackDescription picks a deterministic local description. An
// impostor opening the game plays its hint, which is what the suggestion
// service would have done.
func fallbackDescription(rng *rand.Rand, req DescribeRequest) string {
	if req.IsImpostor && len(req.PreviousDescriptions) == 0 && req.Hint != "" {
		return req.Hint
	}
	options, ok := fallbackDescriptions[req.Difficulty]
	if !ok {
		options = fallbackDescriptions[words.Normal]
	}
	return options[rng.Intn(len(options))]
}

// dedupeSuggestion replaces text when its normalized form is already in
// used; it walks the modifier pool, then synthesizes a unique word.
func dedupeSuggestion(rng *rand.Rand, text string, used map[string]struct{}) string {
	if _, taken := used[Normalize(text)]; !taken {
		return text
	}
	for _, m := range fallbackModifiers {
		if _, taken := used[Normalize(m)]; !taken {
			return m
		}
	}
	return fmt.Sprintf("Algo%d", rng.Intn(100))
}

// fallbackVote picks a uniform random target among the other players.
func fallbackVote(rng *rand.Rand, voterName string, players []GamePlayer) string {
	others := make([]string, 0, len(players)-1)
	for _, p := range players {
		if p.Name != voterName {
			others = append(others, p.Name)
		}
	}
	return others[rng.Intn(len(others))]
}

// matchPlayerName fuzzy-matches a suggestion-service reply against real
// player names: case-insensitive, accent-insensitive, substring in
// either direction.
func matchPlayerName(reply string, candidates []string) (string, bool) {
	r := Normalize(reply)
	if r == "" {
		return "", false
	}
	for _, c := range candidates {
		n := Normalize(c)
		if n == "" {
			continue
		}
		if strings.Contains(r, n) || strings.Contains(n, r) {
			return c, true
		}
	}
	return "", false
}
