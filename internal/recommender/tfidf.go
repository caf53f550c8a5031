package recommender

import (
	"math"
	"strings"
	"unicode"
)

// docVector es un vector TF-IDF disperso: índice de término -> peso.
type docVector map[int]float64

// stopWords (inglés) replica la lista usada al vectorizar los overviews
// en la versión original del demo. Fija: el vocabulario nunca las incluye.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		a about above after again against all am an and any are as at be
		because been before being below between both but by could did do
		does doing down during each few for from further had has have
		having he her here hers herself him himself his how i if in into
		is it its itself just me more most my myself no nor not now of
		off on once only or other our ours ourselves out over own same
		she should so some such than that the their theirs them
		themselves then there these they this those through to too under
		until up very was we were what when where which while who whom
		why will with you your yours yourself yourselves
	`) {
		stopWords[w] = struct{}{}
	}
}

// tokenize: minúsculas, corta en no-alfanumérico, descarta tokens de una
// letra y stop words (mismo criterio que el vectorizador original).
func tokenize(text string) []string {
	raw := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := raw[:0]
	for _, tok := range raw {
		if len(tok) < 2 {
			continue
		}
		if _, skip := stopWords[tok]; skip {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Vectorizer construye el espacio TF-IDF sobre un corpus de documentos.
// Se reconstruye entero cada vez que cambia el corpus, nunca incremental.
type Vectorizer struct {
	vocab map[string]int
	idf   []float64
}

// FitTransform arma vocabulario + idf y devuelve los vectores L2-normalizados
// de todos los documentos. idf suavizado: ln((1+n)/(1+df)) + 1.
func (v *Vectorizer) FitTransform(docs []string) []docVector {
	v.vocab = make(map[string]int)
	tokenized := make([][]string, len(docs))
	df := []int{}

	for i, doc := range docs {
		toks := tokenize(doc)
		tokenized[i] = toks
		seen := map[int]bool{}
		for _, tok := range toks {
			idx, ok := v.vocab[tok]
			if !ok {
				idx = len(v.vocab)
				v.vocab[tok] = idx
				df = append(df, 0)
			}
			if !seen[idx] {
				df[idx]++
				seen[idx] = true
			}
		}
	}

	n := float64(len(docs))
	v.idf = make([]float64, len(df))
	for i, d := range df {
		v.idf[i] = math.Log((1+n)/(1+float64(d))) + 1
	}

	vectors := make([]docVector, len(docs))
	for i, toks := range tokenized {
		vec := docVector{}
		for _, tok := range toks {
			idx := v.vocab[tok]
			vec[idx] += v.idf[idx] // tf crudo * idf
		}
		l2Normalize(vec)
		vectors[i] = vec
	}
	return vectors
}

// VocabularySize expone el tamaño del espacio (para reportes del builder).
func (v *Vectorizer) VocabularySize() int {
	return len(v.vocab)
}

func l2Normalize(vec docVector) {
	var sum float64
	for _, w := range vec {
		sum += w * w
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i, w := range vec {
		vec[i] = w / norm
	}
}

// sparseDot asume vectores ya normalizados: dot == similitud coseno.
func sparseDot(a, b docVector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for i, w := range a {
		if bw, ok := b[i]; ok {
			dot += w * bw
		}
	}
	return dot
}
