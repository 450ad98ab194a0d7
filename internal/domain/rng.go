package domain

import "math/rand"

// Rand encapsula toda la aleatoriedad de una partida: dados y barajado de
// mazos salen de la misma fuente sembrada, nunca de entropía global.
type Rand struct {
	src *rand.Rand
}

// NewRand crea la fuente determinista de la partida.
func NewRand(seed int64) *Rand {
	return &Rand{src: rand.New(rand.NewSource(seed))}
}

// RollDice tira dos dados de seis caras.
func (r *Rand) RollDice() (int, int) {
	return r.src.Intn(6) + 1, r.src.Intn(6) + 1
}

// Shuffle baraja n elementos in situ.
func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	r.src.Shuffle(n, swap)
}
