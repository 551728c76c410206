package httpx

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP devuelve la IP del cliente, respetando X-Forwarded-For si el
// servicio corre detrás de un proxy.
func ClientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
