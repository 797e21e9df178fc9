package printer

import (
	"bytes"
	"context"
	"image"
	"strings"
	"unicode/utf8"

	"tapneat/config"
	"tapneat/internal/core/domain"
	"tapneat/pkg/apperror"
	"tapneat/pkg/money"

	"github.com/rs/zerolog"
)

// ESC/POS control sequences for Epson TM-series thermal printers.
var (
	cmdInit        = []byte{0x1B, 0x40}
	cmdLeftMargin  = []byte{0x1D, 0x4C, 0x00, 0x00}
	cmdAlignLeft   = []byte{0x1B, 0x61, 0x00}
	cmdAlignCenter = []byte{0x1B, 0x61, 0x01}
	cmdBoldOn      = []byte{0x1B, 0x45, 0x01}
	cmdBoldOff     = []byte{0x1B, 0x45, 0x00}
	cmdCut         = []byte{0x1D, 0x56, 0x00}
)

// Width of the raster band on a 58mm head at 8 dots/mm.
const rasterWidth = 384

// QR rendering strategies.
const (
	QRModeNative = "native"
	QRModeRaster = "raster"
)

// Encoder renders a print job into an ESC/POS byte stream. Rendering is
// total: QR problems degrade to a text fallback instead of failing the job.
type Encoder struct {
	width      int
	brand      string
	tagline    []string
	qrMode     string
	moduleSize int
	fetcher    QRFetcher
	log        zerolog.Logger
}

// NewEncoder creates a receipt encoder from printer and receipt config.
func NewEncoder(pcfg config.PrinterConfig, rcfg config.ReceiptConfig, fetcher QRFetcher, log zerolog.Logger) *Encoder {
	width := pcfg.Width
	if width <= 0 {
		width = 32
	}
	return &Encoder{
		width:      width,
		brand:      rcfg.BrandName,
		tagline:    rcfg.Tagline,
		qrMode:     pcfg.QRMode,
		moduleSize: pcfg.QRModuleSize,
		fetcher:    fetcher,
		log:        log.With().Str("component", "escpos").Logger(),
	}
}

// Render builds the full receipt byte stream for a job.
func (e *Encoder) Render(ctx context.Context, job domain.PrintJob) []byte {
	buf := &bytes.Buffer{}
	rule := strings.Repeat("-", e.width)

	buf.Write(cmdInit)
	buf.Write(cmdLeftMargin)

	// Header
	buf.Write(cmdAlignCenter)
	buf.Write(cmdBoldOn)
	e.line(buf, e.brand)
	buf.Write(cmdBoldOff)
	for _, t := range e.tagline {
		e.line(buf, t)
	}
	e.line(buf, rule)

	// Meal title
	buf.Write(cmdBoldOn)
	e.line(buf, strings.ToUpper(job.MealLabel))
	buf.Write(cmdBoldOff)
	e.line(buf, rule)

	// Details
	buf.Write(cmdAlignLeft)
	e.line(buf, "Employee: "+job.EmployeeName)
	e.line(buf, "Emp ID  : "+job.EmployeeCode)
	e.line(buf, "Site    : "+job.Site)
	e.line(buf, "Time    : "+job.OccurredAt.Format("3:04 PM"))
	e.line(buf, "Date    : "+job.OccurredAt.Format("02/01/2006"))
	e.line(buf, rule)

	// Amount
	buf.Write(cmdAlignCenter)
	buf.Write(cmdBoldOn)
	e.line(buf, "Amount: "+money.Label(job.Amount))
	buf.Write(cmdBoldOff)
	e.line(buf, rule)

	// Balance
	buf.Write(cmdBoldOn)
	e.line(buf, "AVAILABLE BALANCE")
	e.line(buf, money.Label(job.Balance))
	buf.Write(cmdBoldOff)
	e.line(buf, rule)
	buf.WriteByte('\n')

	// QR block
	if job.ReceiptURL != "" {
		e.writeQR(ctx, buf, job.ReceiptURL)
		buf.WriteByte('\n')
	}

	// Footer
	buf.Write(cmdAlignCenter)
	e.line(buf, "Scan QR in Browser")
	e.line(buf, "for Details")
	buf.WriteByte('\n')
	e.line(buf, "Thank you!")
	buf.WriteByte('\n')

	buf.Write(cmdCut)
	return buf.Bytes()
}

// line writes a text line truncated to the printable width. The width is
// a character budget, so truncation counts runes rather than bytes.
func (e *Encoder) line(buf *bytes.Buffer, s string) {
	if utf8.RuneCountInString(s) > e.width {
		runes := []rune(s)
		s = string(runes[:e.width])
	}
	buf.WriteString(s)
	buf.WriteByte('\n')
}

func (e *Encoder) writeQR(ctx context.Context, buf *bytes.Buffer, payload string) {
	if e.qrMode == QRModeRaster && e.fetcher != nil {
		img, err := e.fetcher.Fetch(ctx, payload)
		if err != nil {
			e.log.Warn().Err(apperror.ErrRenderFailure(err)).Msg("QR fetch failed, falling back to text")
			e.writeQRFallback(buf, payload)
			return
		}
		e.writeRasterQR(buf, img)
		return
	}
	e.writeNativeQR(buf, payload)
}

// writeNativeQR emits the GS ( k sequence that has the printer draw the
// code itself: model 2, configured module size, error correction L.
func (e *Encoder) writeNativeQR(buf *bytes.Buffer, data string) {
	size := e.moduleSize
	if size < 3 {
		size = 3
	}
	if size > 8 {
		size = 8
	}

	buf.Write(cmdAlignCenter)
	buf.Write([]byte{0x1D, 0x28, 0x6B, 0x04, 0x00, 0x31, 0x41, 0x32, 0x00}) // model 2
	buf.Write([]byte{0x1D, 0x28, 0x6B, 0x03, 0x00, 0x31, 0x43, byte(size)}) // module size
	buf.Write([]byte{0x1D, 0x28, 0x6B, 0x03, 0x00, 0x31, 0x45, 0x30})       // EC level L
	n := len(data) + 3
	buf.Write([]byte{0x1D, 0x28, 0x6B, byte(n & 0xFF), byte(n >> 8), 0x31, 0x50, 0x30}) // store
	buf.WriteString(data)
	buf.Write([]byte{0x1D, 0x28, 0x6B, 0x03, 0x00, 0x31, 0x51, 0x30}) // print
	buf.WriteByte('\n')
}

// writeRasterQR resizes the fetched image to the head width, thresholds it
// to 1-bit and emits a GS v 0 raster band.
func (e *Encoder) writeRasterQR(buf *bytes.Buffer, img image.Image) {
	widthBytes := rasterWidth / 8

	buf.Write(cmdAlignCenter)
	buf.Write([]byte{0x1D, 0x76, 0x30, 0x00})
	buf.Write([]byte{byte(widthBytes & 0xFF), byte(widthBytes >> 8)})
	buf.Write([]byte{byte(rasterWidth & 0xFF), byte(rasterWidth >> 8)})

	bounds := img.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()

	row := make([]byte, widthBytes)
	for y := 0; y < rasterWidth; y++ {
		for i := range row {
			row[i] = 0
		}
		srcY := bounds.Min.Y + y*srcH/rasterWidth
		for x := 0; x < rasterWidth; x++ {
			srcX := bounds.Min.X + x*srcW/rasterWidth
			r, g, b, _ := img.At(srcX, srcY).RGBA()
			gray := (r + g + b) / 3 >> 8
			if gray < 128 {
				row[x/8] |= 1 << (7 - uint(x)%8)
			}
		}
		buf.Write(row)
	}
	buf.WriteByte('\n')
}

func (e *Encoder) writeQRFallback(buf *bytes.Buffer, payload string) {
	buf.Write(cmdAlignCenter)
	e.line(buf, "Scan in Browser")
	buf.WriteString(payload)
	buf.WriteByte('\n')
}
