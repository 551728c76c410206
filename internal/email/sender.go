// Package email envía notificaciones de seguridad. Todo es best-effort:
// una falla de SMTP jamás afecta el request que la originó.
package email

import (
	"context"
	"time"
)

// AlertSender notifica eventos de seguridad al usuario.
type AlertSender interface {
	// SendLoginAlert avisa de un login desde una IP sin sesiones previas.
	SendLoginAlert(ctx context.Context, to, ip, userAgent string, at time.Time) error
}

// Noop descarta todo. Útil en dev y tests.
type Noop struct{}

func (Noop) SendLoginAlert(context.Context, string, string, string, time.Time) error {
	return nil
}
