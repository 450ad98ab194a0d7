package ports

import (
	"context"

	"github.com/alejandrodnm/monopolyarena/internal/domain"
)

// ModelClient ejecuta chat completions con tool calling contra el proveedor
// de modelos.
type ModelClient interface {
	// Complete realiza exactamente una invocación (con los reintentos de
	// transporte internos del cliente) y devuelve el resultado clasificado.
	// El error sólo es no-nil ante cancelación del contexto; los fallos del
	// proveedor viajan en ModelResult.ErrorType.
	Complete(ctx context.Context, req domain.ModelRequest) (domain.ModelResult, error)
}
