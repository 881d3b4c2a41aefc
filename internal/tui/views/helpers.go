package views

import (
	"fmt"
	"io"

	"github.com/mingleapp/mingle/internal/validate"
	"github.com/rivo/tview"
)

// writeFieldErrors renders validation messages in a stable field order
// so the display does not jump between renders.
func writeFieldErrors(w io.Writer, errs validate.Errors, order ...string) {
	for _, field := range order {
		if msg, ok := errs[field]; ok {
			_, _ = fmt.Fprintf(w, "[red]%s[-]\n", tview.Escape(msg))
		}
	}
}
