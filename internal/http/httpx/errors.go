package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dropDatabas3/gatehouse/internal/auth"
)

type apiError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorCode        int    `json:"error_code,omitempty"`
	RequestID        string `json:"request_id,omitempty"`
}

// Códigos numéricos estables por code string, para clientes que no quieren
// comparar strings.
var errorCodes = map[string]int{
	"invalid_json":          1001,
	"missing_fields":        1002,
	"method_not_allowed":    1405,
	"rate_limited":          1429,
	"internal_error":        1500,
	"invalid_credentials":   1100,
	"account_deactivated":   1101,
	"refresh_token_missing": 1300,
	"refresh_token_invalid": 1301,
	"email_taken":           1409,
	"user_not_found":        1404,
	"service_unavailable":   1503,
	"invalid_token":         1900,
	"missing_identity":      1901,
	"not_authenticated":     1902,
	"insufficient_role":     1903,
}

func WriteError(w http.ResponseWriter, status int, code, desc string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rid := w.Header().Get("X-Request-ID")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{
		Error:            code,
		ErrorDescription: desc,
		ErrorCode:        errorCodes[code],
		RequestID:        rid,
	})
}

// WriteAuthError mapea las fallas tipadas del core al wire. La causa interna
// (ae.Err) nunca sale: solo code y descripción estable.
func WriteAuthError(w http.ResponseWriter, err error) {
	var ae *auth.Error
	if !errors.As(err, &ae) {
		WriteError(w, http.StatusInternalServerError, "internal_error", "error interno")
		return
	}
	WriteError(w, statusFor(ae.Kind), ae.Code, ae.Desc)
}

func statusFor(k auth.Kind) int {
	switch k {
	case auth.KindConflict:
		return http.StatusConflict
	case auth.KindNotFound:
		return http.StatusNotFound
	case auth.KindUnauthorized:
		return http.StatusUnauthorized
	case auth.KindForbidden:
		return http.StatusForbidden
	case auth.KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// WriteJSON: respuesta JSON estándar
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ReadJSON decodifica el body de forma tolerante (NO falla por campos
// desconocidos). Valida Content-Type y limita el tamaño a 1MB.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		WriteError(w, http.StatusBadRequest, "invalid_json", "Content-Type debe ser application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && err != io.EOF {
		WriteError(w, http.StatusBadRequest, "invalid_json", "json inválido")
		return false
	}
	return true
}
