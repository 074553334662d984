// Package matching compara descripciones de ítems y resuelve, para cada línea importada,
// el mejor candidato del catálogo.
package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Parámetros del puntaje por prefijo (ver Score).
const (
	prefixMinRunes  = 4
	prefixMinCover  = 0.5
	prefixBaseScore = 0.85
)

// Normalize pasa a minúsculas, quita diacríticos y elimina todo lo que no sea letra o dígito.
// "Filtro de Óleo XYZ-10" → "filtrodeoleoxyz10".
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, stripped)
}

// Similarity devuelve un valor en [0,1] basado en la distancia de Levenshtein entre las
// formas normalizadas: (maxLen - distancia) / maxLen. Dos formas iguales (incluidas dos
// vacías) valen 1.
func Similarity(a, b string) float64 {
	return similarityNormalized([]rune(Normalize(a)), []rune(Normalize(b)))
}

func similarityNormalized(a, b []rune) float64 {
	if string(a) == string(b) {
		return 1
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return float64(maxLen-levenshtein(a, b)) / float64(maxLen)
}

// Levenshtein distancia de edición (inserción, borrado, sustitución) entre a y b, por runas.
func Levenshtein(a, b string) int {
	return levenshtein([]rune(a), []rune(b))
}

func levenshtein(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i, ca := range a {
		curr[0] = i + 1
		for j, cb := range b {
			cost := 1
			if ca == cb {
				cost = 0
			}
			curr[j+1] = min(curr[j]+1, prev[j+1]+1, prev[j]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// Score es el puntaje que usa el resolver: el mayor entre Similarity y el puntaje por
// prefijo. El puntaje por prefijo aplica cuando la forma normalizada más corta tiene al
// menos 4 runas, es prefijo de la más larga y cubre al menos la mitad de ella; vale
// 0.85 + 0.15 * (corta/larga). Es simétrico y queda en [0,1].
func Score(a, b string) float64 {
	return scoreNormalized([]rune(Normalize(a)), []rune(Normalize(b)), true)
}

func scoreNormalized(a, b []rune, prefixBoost bool) float64 {
	sim := similarityNormalized(a, b)
	if !prefixBoost {
		return sim
	}
	if p := prefixScore(a, b); p > sim {
		return p
	}
	return sim
}

func prefixScore(a, b []rune) float64 {
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) < prefixMinRunes || len(short) == len(long) {
		return 0
	}
	cover := float64(len(short)) / float64(len(long))
	if cover < prefixMinCover || string(long[:len(short)]) != string(short) {
		return 0
	}
	return prefixBaseScore + (1-prefixBaseScore)*cover
}
