package checkout

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrEmptyCart        = errors.New("checkout: cart is empty")
	ErrSubmitInProgress = errors.New("checkout: submission already in progress")
	ErrMissingSessionID = errors.New("checkout: session_id is required")
)

// Generic user-facing messages.
const (
	MsgBackendGeneric = "No se pudo procesar tu pedido. Intenta de nuevo."
	MsgNetwork        = "No se pudo conectar con el servidor. Revisa tu conexión e intenta de nuevo."
	MsgEmptyCart      = "Tu carrito está vacío."
	MsgInProgress     = "Tu pedido ya se está procesando."
	MsgMissingSession = "Falta el identificador de la sesión de pago."
)

// ValidationError carries one message per invalid field.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "checkout: invalid fields: " + strings.Join(keys, ", ")
}

// Field returns the message for field, or "".
func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}

// NetworkError means the backend could not be reached or timed out.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("checkout: network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// BackendError is a non-success answer from the backend. Message is shown verbatim.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	msg := e.Message
	if strings.TrimSpace(msg) == "" {
		msg = MsgBackendGeneric
	}
	if e.Status > 0 {
		return fmt.Sprintf("checkout: backend error (status %d): %s", e.Status, msg)
	}
	return "checkout: backend error: " + msg
}

// UserMessage maps an error to the banner text the storefront shows.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	var ne *NetworkError
	var be *BackendError
	switch {
	case errors.As(err, &ve):
		return "Revisa los campos marcados."
	case errors.As(err, &ne):
		return MsgNetwork
	case errors.As(err, &be):
		if strings.TrimSpace(be.Message) != "" {
			return be.Message
		}
		return MsgBackendGeneric
	case errors.Is(err, ErrEmptyCart):
		return MsgEmptyCart
	case errors.Is(err, ErrSubmitInProgress):
		return MsgInProgress
	case errors.Is(err, ErrMissingSessionID):
		return MsgMissingSession
	default:
		return MsgBackendGeneric
	}
}
