package styles

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Estilos reconocidos por PrintFS, SprintfS y FprintFS.
const (
	Default = "default"
	Error   = "error"
	Success = "success"
	Info    = "info"
	Warning = "warning"
)

var defaultStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#7D56F4"))

var errorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#F45E6E"))

var successStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#6ef4a1ff"))

var infoStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#6EC4F4"))

var warningStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#F4C56E"))

func render(style, text string) string {
	switch style {
	case Error:
		return errorStyle.Render(text)
	case Success:
		return successStyle.Render(text)
	case Info:
		return infoStyle.Render(text)
	case Warning:
		return warningStyle.Render(text)
	default:
		return defaultStyle.Render(text)
	}
}

func SprintfS(style string, format string, a ...interface{}) string {
	return render(style, fmt.Sprintf(format, a...))
}

// FprintFS escribe una línea con estilo en w.
func FprintFS(w io.Writer, style string, format string, a ...interface{}) {
	fmt.Fprintln(w, SprintfS(style, format, a...))
}

// PrintFS escribe en stdout; los errores van a stderr.
func PrintFS(style string, format string, a ...interface{}) {
	if style == Error {
		FprintFS(os.Stderr, style, format, a...)
		return
	}
	FprintFS(os.Stdout, style, format, a...)
}
