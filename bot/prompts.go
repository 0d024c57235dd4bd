// bot/prompts.go
package bot

import (
	"fmt"
	"strings"

	"github.com/jetchart/impostor/game"
	"github.com/jetchart/impostor/words"
)

type difficultyInstruction struct {
	innocent string
	impostor string
}

var difficultyInstructions = map[words.Difficulty]difficultyInstruction{
	words.Facil: {
		innocent: "Dá una pista MUY CLARA y OBVIA que ayude a los inocentes. Puede ser casi directa.",
		impostor: "Tratá de ser muy genérico. No te preocupes tanto por parecer sospechoso.",
	},
	words.Normal: {
		innocent: "Dá una pista equilibrada: útil para inocentes pero no tan obvia para el impostor.",
		impostor: "Tratá de sonar convincente con algo relacionado a la categoría general.",
	},
	words.Dificil: {
		innocent: "Dá una pista SUTIL e INDIRECTA. Solo los que conocen la palabra deberían entenderla.",
		impostor: "Sé muy astuto. Usá palabras abstractas que suenen inteligentes pero vagas.",
	},
	words.Leyenda: {
		innocent: "Dá una pista MUY CRÍPTICA. Usá metáforas, referencias culturales o conexiones oscuras. Casi nadie debería entenderla fácil.",
		impostor: "Sé un maestro del engaño. Usá palabras filosóficas, abstractas o poéticas que suenen profundas.",
	},
}

func describePrompts(req game.DescribeRequest) (system, user string) {
	instructions, ok := difficultyInstructions[req.Difficulty]
	if !ok {
		instructions = difficultyInstructions[words.Normal]
	}

	usedWordsStr := "ninguna aún"
	if len(req.PreviousDescriptions) > 0 {
		usedWordsStr = strings.Join(req.PreviousDescriptions, ", ")
	}

	if req.IsImpostor {
		analysisContext := "Sos el primero en hablar, así que usá tu pista como base."
		if len(req.PreviousDescriptions) > 0 {
			analysisContext = fmt.Sprintf("Analizá estas palabras que dijeron otros: %s. Tratá de deducir qué palabra secreta podrían estar describiendo y da una palabra que encaje con ese patrón.", usedWordsStr)
		}
		system = fmt.Sprintf(`Sos un jugador BOT en un juego tipo "Impostores". Sos el IMPOSTOR y NO sabés la palabra secreta.
Solo tenés una pista vaga sobre la categoría: %q.
Tenés que inventar UNA SOLA PALABRA que suene relacionada para que los demás piensen que sabés la palabra.
%s
IMPORTANTE: Si otros ya hablaron, analizá sus palabras para deducir la palabra secreta y dar algo coherente.
REGLA CRÍTICA: NO podés repetir palabras ya dichas. Palabras prohibidas: %s.
Respondé con UNA SOLA PALABRA en español. Sin explicaciones, sin puntos, solo la palabra.`, req.Hint, instructions.impostor, usedWordsStr)
		user = fmt.Sprintf(`Tu pista de categoría es: %q.
%s
PROHIBIDO usar estas palabras: %s.
Dame UNA SOLA PALABRA que NO esté en la lista de prohibidas.`, req.Hint, analysisContext, usedWordsStr)
		return system, user
	}

	system = fmt.Sprintf(`Sos un jugador BOT en un juego tipo "Impostores". Sos INOCENTE y conocés la palabra secreta: %q.
Tenés que dar UNA SOLA PALABRA relacionada que ayude a otros inocentes sin revelar la palabra al impostor.
%s
REGLA CRÍTICA: NO podés repetir palabras ya dichas. Palabras prohibidas: %s.
Respondé con UNA SOLA PALABRA en español. Sin explicaciones, sin puntos, solo la palabra. NUNCA digas la palabra secreta directamente.`, req.Word, instructions.innocent, usedWordsStr)

	firstLine := "Sos el primero en hablar."
	if len(req.PreviousDescriptions) > 0 {
		firstLine = fmt.Sprintf("Palabras ya dichas (PROHIBIDO repetir): %s.", usedWordsStr)
	}
	user = fmt.Sprintf(`La palabra secreta es: %q.
%s
Dame UNA SOLA PALABRA que NO esté en la lista de prohibidas y cumpla con el nivel de dificultad.`, req.Word, firstLine)
	return system, user
}

func votePrompt(req game.VoteRequest) string {
	// One line per rival, with everything they said this game.
	said := make(map[string][]string, len(req.Players))
	for _, d := range req.Descriptions {
		if d.PlayerName != req.VoterName {
			said[d.PlayerName] = append(said[d.PlayerName], d.Text)
		}
	}
	var summary strings.Builder
	for _, name := range req.Players {
		line := "nada"
		if texts := said[name]; len(texts) > 0 {
			line = `"` + strings.Join(texts, `", "`) + `"`
		}
		fmt.Fprintf(&summary, "- %s: dijo %s\n", name, line)
	}

	if req.VoterIsImpostor {
		return fmt.Sprintf(`Sos el IMPOSTOR en un juego de palabras. Querés pasar desapercibido.
Estos son los otros jugadores y lo que dijeron:
%s
Analizá quién parece más sospechoso para los demás (aunque vos sabés que sos el impostor).
Votá por alguien que parezca tener respuestas raras o fuera de lugar para desviar la atención.
Respondé SOLO con el nombre exacto del jugador por quien votás.`, summary.String())
	}
	return fmt.Sprintf(`Sos INOCENTE en un juego de palabras. La palabra secreta es %q.
Estos son los otros jugadores y lo que dijeron:
%s
Analizá las respuestas de cada jugador:
- Los inocentes conocen la palabra y sus respuestas deberían estar relacionadas con %q
- El impostor NO conoce la palabra y sus respuestas pueden ser vagas, genéricas o fuera de contexto

¿Quién parece saber menos sobre la palabra? ¿Quién dio respuestas que no encajan bien?
Respondé SOLO con el nombre exacto del jugador que creés que es el impostor.`, req.Word, summary.String(), req.Word)
}

func deducePrompt(req game.DeduceRequest) string {
	return fmt.Sprintf(`Sos un impostor en un juego de palabras. Tu pista era %q.
Los jugadores dijeron estas palabras: %s.
Analizá las palabras y tratá de adivinar cuál es la palabra secreta.
Respondé SOLO con la palabra que creés que es, sin explicación.`, req.Hint, strings.Join(req.PreviousDescriptions, ", "))
}
