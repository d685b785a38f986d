package display

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether w is a terminal that should receive color
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// palette wraps fatih/color printers that are disabled when color is off
type palette struct {
	green  *color.Color
	red    *color.Color
	yellow *color.Color
	cyan   *color.Color
	faint  *color.Color
	bold   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed, color.Bold),
		yellow: color.New(color.FgYellow),
		cyan:   color.New(color.FgCyan),
		faint:  color.New(color.FgHiBlack),
		bold:   color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.green, p.red, p.yellow, p.cyan, p.faint, p.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}
