package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorClaude   = lipgloss.Color("173") // orange
	colorChatGPT  = lipgloss.Color("36")  // teal
	colorDeepSeek = lipgloss.Color("69")  // blue
	colorFocus    = lipgloss.Color("12")
	colorDim      = lipgloss.Color("240")
	colorBorder   = lipgloss.Color("238")

	styleInput       = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)
	styleInputPrompt = styleInput

	styleListSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	styleSnippet      = lipgloss.NewStyle().Foreground(colorDim)
	styleError        = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	stylePanelBorder  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder)
	styleActiveBorder = stylePanelBorder.BorderForeground(colorFocus)

	styleStatusBar = lipgloss.NewStyle().Foreground(colorDim).Padding(0, 1)
)

// platformStyle colors a result's platform badge by chat source.
func platformStyle(source string) lipgloss.Style {
	switch source {
	case "claude":
		return lipgloss.NewStyle().Foreground(colorClaude)
	case "chatgpt":
		return lipgloss.NewStyle().Foreground(colorChatGPT)
	case "deepseek":
		return lipgloss.NewStyle().Foreground(colorDeepSeek)
	default:
		return styleSnippet
	}
}
