package sale

import (
	"fmt"
	"strings"
)

// Ticket date and time layouts, pinned so the artifact is reproducible
// regardless of locale.
const (
	ticketDateLayout = "02/01/2006"
	ticketTimeLayout = "15:04:05"
)

// Ticket renders the printable sales ticket for the sale. The layout is
// fixed byte for byte, including the trailing newline.
func Ticket(s *Sale) string {
	var b strings.Builder

	b.WriteString("======= TICKET DE VENTA =======\n")
	fmt.Fprintf(&b, "Fecha: %s %s\n",
		s.Timestamp.Format(ticketDateLayout),
		s.Timestamp.Format(ticketTimeLayout),
	)
	fmt.Fprintf(&b, "Ticket #%d\n\n", s.TicketNumber)

	b.WriteString("PRODUCTOS:\n")
	for i, line := range s.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s\n  Cantidad: %d x $%s = $%s",
			line.Product.Name,
			line.Quantity,
			line.Product.Price.StringFixed(2),
			line.Subtotal.StringFixed(2),
		)
	}

	b.WriteString("\n\n================================\n")
	fmt.Fprintf(&b, "TOTAL: $%s\n", s.Total.StringFixed(2))
	b.WriteString("================================\n\n")
	b.WriteString("¡Gracias por su compra!\n")

	return b.String()
}

// TicketFilename returns the download name of the ticket artifact:
// TICKET_<n>_<day>-<month>-<year>_<hour>-<minute>.txt with unpadded fields.
func TicketFilename(s *Sale) string {
	t := s.Timestamp
	return fmt.Sprintf("TICKET_%d_%d-%d-%d_%d-%d.txt",
		s.TicketNumber,
		t.Day(), int(t.Month()), t.Year(),
		t.Hour(), t.Minute(),
	)
}
