package recommender

// Matrix es una matriz cuadrada densa (similitudes). Campos exportados
// para que encoding/gob la pueda persistir tal cual.
type Matrix struct {
	N    int
	Data []float64
}

func NewMatrix(n int) *Matrix {
	return &Matrix{N: n, Data: make([]float64, n*n)}
}

func (m *Matrix) At(i, j int) float64 {
	return m.Data[i*m.N+j]
}

func (m *Matrix) Set(i, j int, v float64) {
	m.Data[i*m.N+j] = v
}

// Row devuelve la fila i (slice sobre el buffer interno, no copiar de vuelta).
func (m *Matrix) Row(i int) []float64 {
	return m.Data[i*m.N : (i+1)*m.N]
}
