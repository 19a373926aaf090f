package indicator

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	speechStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81"))

	brailleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

func renderSpeech(text string) string {
	return speechStyle.Render(text)
}

func renderBraille(text string) string {
	return brailleStyle.Render("⠿ " + text)
}

func renderMessage(title, body string, buttons []string) string {
	rendered := make([]string, 0, len(buttons))
	for _, b := range buttons {
		rendered = append(rendered, buttonStyle.Render(b))
	}
	parts := []string{}
	if strings.TrimSpace(title) != "" {
		parts = append(parts, titleStyle.Render(title), "")
	}
	parts = append(parts, body, "", strings.Join(rendered, " "))
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
