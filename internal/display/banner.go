package display

import (
	"io"

	"github.com/backmassage/pixmaster/internal/term"
)

const banner = ` ____  _                          _
|  _ \(_)_  ___ __ ___   __ _ ___| |_ ___ _ __
| |_) | \ \/ / '_ ` + "`" + ` _ \ / _` + "`" + ` / __| __/ _ \ '__|
|  __/| |>  <| | | | | | (_| \__ \ ||  __/ |
|_|   |_/_/\_\_| |_| |_|\__,_|___/\__\___|_|
`

// PrintBanner writes the ASCII art banner to w, magenta when colors are on.
func PrintBanner(w io.Writer) {
	_, _ = io.WriteString(w, term.Paint(term.Magenta, banner))
}
