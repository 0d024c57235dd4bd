// words/words.go
package words

import (
	"errors"
	"math/rand"
)

// Difficulty selects which slice of the word pool a game draws from.
type Difficulty string

const (
	Facil   Difficulty = "facil"
	Normal  Difficulty = "normal"
	Dificil Difficulty = "dificil"
	Leyenda Difficulty = "leyenda"
)

// ParseDifficulty returns Normal for anything it does not recognize,
// matching how the setup screen treats unknown values.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(s) {
	case Facil, Normal, Dificil, Leyenda:
		return Difficulty(s)
	default:
		return Normal
	}
}

// Word is a secret word plus the vague hint handed to impostors.
type Word struct {
	Text string
	Hint string
}

// Source draws a random word for a game. The returned error is only
// ErrEmptyPool; callers own the non-empty precondition.
type Source interface {
	Draw(categories []string, difficulty Difficulty) (Word, error)
}

var ErrEmptyPool = errors.New("words: no words match the selected categories and difficulty")

// Pool is the built-in Spanish word set, grouped by category and difficulty.
type Pool struct {
	entries map[string]map[Difficulty][]Word
	rng     *rand.Rand
}

// NewPool returns the default pool. rng may be nil, in which case the
// global math/rand source is used.
func NewPool(rng *rand.Rand) *Pool {
	return &Pool{entries: defaultEntries, rng: rng}
}

// Categories lists the category identifiers in the pool.
func (p *Pool) Categories() []string {
	out := make([]string, 0, len(p.entries))
	for id := range p.entries {
		out = append(out, id)
	}
	return out
}

// Count reports how many words a category holds at a difficulty.
func (p *Pool) Count(category string, difficulty Difficulty) int {
	return len(p.entries[category][difficulty])
}

// Draw picks a uniformly random word among the selected categories at the
// given difficulty. An empty category list means all categories.
func (p *Pool) Draw(categories []string, difficulty Difficulty) (Word, error) {
	var candidates []Word
	if len(categories) == 0 {
		categories = p.Categories()
	}
	for _, id := range categories {
		candidates = append(candidates, p.entries[id][difficulty]...)
	}
	if len(candidates) == 0 {
		return Word{}, ErrEmptyPool
	}
	return candidates[p.intn(len(candidates))], nil
}

func (p *Pool) intn(n int) int {
	if p.rng != nil {
		return p.rng.Intn(n)
	}
	return rand.Intn(n)
}

var defaultEntries = map[string]map[Difficulty][]Word{
	"animales": {
		Facil: {
			{Text: "PERRO", Hint: "Mascota"},
			{Text: "GATO", Hint: "Mascota"},
			{Text: "CABALLO", Hint: "Animal de campo"},
			{Text: "VACA", Hint: "Animal de campo"},
			{Text: "LEON", Hint: "Animal salvaje"},
		},
		Normal: {
			{Text: "PINGUINO", Hint: "Animal"},
			{Text: "DELFIN", Hint: "Animal marino"},
			{Text: "BUHO", Hint: "Ave"},
			{Text: "TORTUGA", Hint: "Animal"},
			{Text: "CAMELLO", Hint: "Animal"},
		},
		Dificil: {
			{Text: "ORNITORRINCO", Hint: "Animal"},
			{Text: "AXOLOTE", Hint: "Animal"},
			{Text: "MANTARRAYA", Hint: "Animal marino"},
			{Text: "PANGOLIN", Hint: "Animal"},
		},
		Leyenda: {
			{Text: "QUIRQUINCHO", Hint: "Animal"},
			{Text: "CARPINCHO", Hint: "Animal"},
			{Text: "AGUARA GUAZU", Hint: "Animal"},
		},
	},
	"comida": {
		Facil: {
			{Text: "PIZZA", Hint: "Comida"},
			{Text: "ASADO", Hint: "Comida"},
			{Text: "HELADO", Hint: "Postre"},
			{Text: "EMPANADA", Hint: "Comida"},
			{Text: "MILANESA", Hint: "Comida"},
		},
		Normal: {
			{Text: "GUACAMOLE", Hint: "Comida"},
			{Text: "RISOTTO", Hint: "Comida"},
			{Text: "CEVICHE", Hint: "Comida"},
			{Text: "TIRAMISU", Hint: "Postre"},
			{Text: "HUMITA", Hint: "Comida"},
		},
		Dificil: {
			{Text: "CHUCRUT", Hint: "Comida"},
			{Text: "KIMCHI", Hint: "Comida"},
			{Text: "FALAFEL", Hint: "Comida"},
			{Text: "CARBONADA", Hint: "Comida"},
		},
		Leyenda: {
			{Text: "ESCABECHE", Hint: "Comida"},
			{Text: "CHIMICHURRI", Hint: "Condimento"},
			{Text: "VITEL TONE", Hint: "Comida"},
		},
	},
	"deportes": {
		Facil: {
			{Text: "FUTBOL", Hint: "Deporte"},
			{Text: "TENIS", Hint: "Deporte"},
			{Text: "BASQUET", Hint: "Deporte"},
			{Text: "NATACION", Hint: "Deporte"},
		},
		Normal: {
			{Text: "ESGRIMA", Hint: "Deporte"},
			{Text: "POLO", Hint: "Deporte"},
			{Text: "HANDBALL", Hint: "Deporte"},
			{Text: "CICLISMO", Hint: "Deporte"},
		},
		Dificil: {
			{Text: "BIATLON", Hint: "Deporte"},
			{Text: "CURLING", Hint: "Deporte"},
			{Text: "PELOTA PALETA", Hint: "Deporte"},
		},
		Leyenda: {
			{Text: "PATO", Hint: "Deporte"},
			{Text: "CESTOBALL", Hint: "Deporte"},
		},
	},
	"musica": {
		Facil: {
			{Text: "GUITARRA", Hint: "Instrumento"},
			{Text: "PIANO", Hint: "Instrumento"},
			{Text: "BATERIA", Hint: "Instrumento"},
			{Text: "TANGO", Hint: "Genero musical"},
		},
		Normal: {
			{Text: "VIOLONCHELO", Hint: "Instrumento"},
			{Text: "BANDONEON", Hint: "Instrumento"},
			{Text: "CUMBIA", Hint: "Genero musical"},
			{Text: "SAXOFON", Hint: "Instrumento"},
		},
		Dificil: {
			{Text: "CHARANGO", Hint: "Instrumento"},
			{Text: "THEREMIN", Hint: "Instrumento"},
			{Text: "MILONGA", Hint: "Genero musical"},
		},
		Leyenda: {
			{Text: "ERKE", Hint: "Instrumento"},
			{Text: "CHAMAME", Hint: "Genero musical"},
		},
	},
	"lugares": {
		Facil: {
			{Text: "PLAYA", Hint: "Lugar"},
			{Text: "ESCUELA", Hint: "Lugar"},
			{Text: "HOSPITAL", Hint: "Lugar"},
			{Text: "CINE", Hint: "Lugar"},
		},
		Normal: {
			{Text: "FARO", Hint: "Lugar"},
			{Text: "OBSERVATORIO", Hint: "Lugar"},
			{Text: "GLACIAR", Hint: "Lugar"},
			{Text: "VIÑEDO", Hint: "Lugar"},
		},
		Dificil: {
			{Text: "SALAR", Hint: "Lugar"},
			{Text: "ESTUARIO", Hint: "Lugar"},
			{Text: "ANFITEATRO", Hint: "Lugar"},
		},
		Leyenda: {
			{Text: "TALAMPAYA", Hint: "Lugar"},
			{Text: "ISCHIGUALASTO", Hint: "Lugar"},
		},
	},
	"objetos": {
		Facil: {
			{Text: "SILLA", Hint: "Objeto"},
			{Text: "RELOJ", Hint: "Objeto"},
			{Text: "PARAGUAS", Hint: "Objeto"},
			{Text: "ESPEJO", Hint: "Objeto"},
		},
		Normal: {
			{Text: "BRUJULA", Hint: "Objeto"},
			{Text: "TERMO", Hint: "Objeto"},
			{Text: "CANDADO", Hint: "Objeto"},
			{Text: "LINTERNA", Hint: "Objeto"},
		},
		Dificil: {
			{Text: "ASTROLABIO", Hint: "Objeto"},
			{Text: "CALEIDOSCOPIO", Hint: "Objeto"},
			{Text: "SEXTANTE", Hint: "Objeto"},
		},
		Leyenda: {
			{Text: "MATE LISTO", Hint: "Objeto"},
			{Text: "BOLEADORAS", Hint: "Objeto"},
		},
	},
}
