// Package mail envía comprobantes de venta por SMTP.
package mail

import (
	"context"
	"fmt"
	"io"

	gomail "gopkg.in/gomail.v2"

	"github.com/kiosco-app/ventas-api/internal/application/sales"
	"github.com/kiosco-app/ventas-api/pkg/config"
)

var _ sales.Notifier = (*SMTPNotifier)(nil)

// SMTPNotifier implementa sales.Notifier sobre SMTP (gomail).
// Construirlo solo si hay SMTP configurado; con notifier nil el caso de uso
// de ventas no intenta enviar nada.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPNotifier construye el notificador a partir de la config SMTP.
func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   from,
	}
}

// Send envía el correo con el comprobante adjunto (si receiptPDF no es nil).
// gomail no acepta context: se respeta la cancelación chequeando antes de
// marcar, el envío en sí queda acotado por el timeout de conexión del dialer.
func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string, receiptPDF []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	if len(receiptPDF) > 0 {
		msg.Attach("comprobante.pdf",
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(receiptPDF)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {"application/pdf"}}),
		)
	}

	if err := n.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("mail: enviar comprobante a %s: %w", to, err)
	}
	return nil
}
