package ui

import "github.com/gdamore/tcell/v2"

// Theme holds color constants for the TUI.
type Theme struct {
	BgColor          tcell.Color
	FgColor          tcell.Color
	BorderColor      tcell.Color
	BorderFocusColor tcell.Color
	TableHeaderFg    tcell.Color
	TableHeaderBg    tcell.Color
	TableCursorFg    tcell.Color
	TableCursorBg    tcell.Color
	TitleColor       tcell.Color
	LabelColor       tcell.Color
	StatusSentColor  tcell.Color
	StatusReadColor  tcell.Color
	FailedColor      tcell.Color
	OnlineColor      tcell.Color
	FlashInfoColor   tcell.Color
	FlashErrColor    tcell.Color
}

// DefaultTheme returns the dark theme the client ships with.
func DefaultTheme() *Theme {
	return &Theme{
		BgColor:          tcell.ColorBlack,
		FgColor:          tcell.ColorLightGray,
		BorderColor:      tcell.ColorMediumPurple,
		BorderFocusColor: tcell.ColorOrchid,
		TableHeaderFg:    tcell.ColorWhite,
		TableHeaderBg:    tcell.ColorBlack,
		TableCursorFg:    tcell.ColorBlack,
		TableCursorBg:    tcell.ColorMediumPurple,
		TitleColor:       tcell.ColorOrchid,
		LabelColor:       tcell.ColorMediumPurple,
		StatusSentColor:  tcell.ColorGray,
		StatusReadColor:  tcell.ColorDeepSkyBlue,
		FailedColor:      tcell.ColorOrangeRed,
		OnlineColor:      tcell.ColorGreen,
		FlashInfoColor:   tcell.ColorNavajoWhite,
		FlashErrColor:    tcell.ColorOrangeRed,
	}
}
