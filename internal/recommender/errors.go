package recommender

import "errors"

// Las tres clases de error del core. Los services/handlers discriminan
// con errors.Is; el detalle va envuelto con fmt.Errorf + %w.
var (
	// ErrData: fuente de datos vacía o ilegible. Fatal para la operación.
	ErrData = errors.New("data error")

	// ErrNotFound: título o usuario desconocido. Recuperable por el caller.
	ErrNotFound = errors.New("not found")

	// ErrState: operación invocada antes del build requerido.
	ErrState = errors.New("invalid state")
)
