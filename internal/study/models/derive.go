package models

import (
	"strconv"
	"time"
)

// Derived holds the aggregate fields computed from a study's items.
type Derived struct {
	Progreso float64
	Score    float64
	Nivel    Nivel
}

// Derive computes progress, score and level from items. It is pure: the same
// items always produce the same result.
//
//	progreso = round1(done / max(count, 1) * 100)
//	score    = round1(sum(puntaje))
//	nivel    = NivelForScore(score)
func Derive(items []Item) Derived {
	total := len(items)
	if total == 0 {
		total = 1
	}
	done := 0
	sum := 0.0
	for _, it := range items {
		if it.Estado.IsDone() {
			done++
		}
		sum += it.Puntaje
	}
	score := round1(sum)
	return Derived{
		Progreso: round1(float64(done) / float64(total) * 100),
		Score:    score,
		Nivel:    NivelForScore(score),
	}
}

// round1 rounds the exact binary value to one decimal place, ties to even.
func round1(x float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	return r
}

// ApplyDerived writes the derived fields and bumps the version stamp.
func (e *Estudio) ApplyDerived(d Derived, now time.Time) {
	e.Progreso = d.Progreso
	e.ScoreCuantitativo = d.Score
	e.NivelCualitativo = d.Nivel
	e.Version++
	e.UpdatedAt = now
}
