// Package similarity holds the vector math shared by ranking and embedding sync.
package similarity

import "math"

// Cosine returns dot(a,b)/(|a||b|). Vectors of different length are compared
// as if the shorter one were padded with zeros. A zero-norm input yields 0.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		var ai, bi float64
		if i < len(a) {
			ai = float64(a[i])
		}
		if i < len(b) {
			bi = float64(b[i])
		}
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}
	mag := math.Sqrt(normA) * math.Sqrt(normB)
	if mag == 0 {
		return 0
	}
	return dot / mag
}

// Centroid averages vectors element-wise. Returns nil when there is nothing to average.
func Centroid(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	dim := 0
	for _, v := range vectors {
		if len(v) > dim {
			dim = len(v)
		}
	}
	if dim == 0 {
		return nil
	}
	sum := make([]float64, dim)
	for _, v := range vectors {
		for i, x := range v {
			sum[i] += float64(x)
		}
	}
	out := make([]float32, dim)
	n := float64(len(vectors))
	for i := range sum {
		out[i] = float32(sum[i] / n)
	}
	return out
}
