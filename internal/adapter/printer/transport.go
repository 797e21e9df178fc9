package printer

import (
	"context"
	"net"
	"time"

	"tapneat/config"
	"tapneat/pkg/apperror"

	"github.com/rs/zerolog"
)

// TCPTransport implements ports.PrinterTransport over a raw port-9100
// socket. One connection per receipt: dial, write, settle, close.
type TCPTransport struct {
	addr        string
	connTimeout time.Duration
	settleDelay time.Duration
	log         zerolog.Logger
}

// NewTCPTransport creates a transport for the configured printer.
func NewTCPTransport(cfg config.PrinterConfig, log zerolog.Logger) *TCPTransport {
	return &TCPTransport{
		addr:        cfg.Addr(),
		connTimeout: cfg.ConnTimeout,
		settleDelay: cfg.SettleDelay,
		log:         log.With().Str("component", "printer_transport").Logger(),
	}
}

// Send delivers the rendered byte stream to the printer. The settle delay
// after the write lets the printer drain its buffer before the socket drops.
func (t *TCPTransport) Send(ctx context.Context, data []byte) error {
	dialer := net.Dialer{Timeout: t.connTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return apperror.ErrPrinterUnreachable(err)
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(t.connTimeout)); err != nil {
		return apperror.ErrPrinterUnreachable(err)
	}
	if _, err := conn.Write(data); err != nil {
		return apperror.ErrPrinterUnreachable(err)
	}

	t.log.Debug().
		Str("printer", t.addr).
		Int("bytes", len(data)).
		Msg("receipt transmitted")

	if t.settleDelay > 0 {
		select {
		case <-time.After(t.settleDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
