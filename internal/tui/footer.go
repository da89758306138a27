package tui

// renderFooter renders the key binding help footer at full terminal width.
// A pending command status replaces the hint until the next action.
func renderFooter(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}
	text := "? for help"
	if app.showHelp {
		text = helpText
	}
	if app.status != "" && !app.showHelp {
		style := StyleGreen
		if app.statusErr {
			style = StyleRed
		}
		return style.Width(width).MaxWidth(width).Render(app.status)
	}
	return StyleDim.Width(width).MaxWidth(width).Render(text)
}
