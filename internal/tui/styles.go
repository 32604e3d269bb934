package tui

import "github.com/charmbracelet/lipgloss"

// Colors using AdaptiveColor for light/dark terminal support.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorOrange = lipgloss.AdaptiveColor{Light: "166", Dark: "208"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
	colorBlue   = lipgloss.AdaptiveColor{Light: "26", Dark: "39"}
)

// Layout styles.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(lipgloss.AdaptiveColor{Light: "235", Dark: "236"})

	focusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorWhite)

	unfocusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim)
)

// Session list styles.
var (
	sessionIdleStyle = lipgloss.NewStyle().Foreground(colorDim)
	sessionLiveStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)

	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorWhite)

	selectedItemStyle = lipgloss.NewStyle().
				Background(lipgloss.AdaptiveColor{Light: "254", Dark: "237"})
)

// Message tree styles.
var (
	msgSystemStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	msgUserStyle    = lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
	msgAgentStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	msgStepStyle    = lipgloss.NewStyle().Bold(true)
	msgSubstepStyle = lipgloss.NewStyle().Foreground(colorDim)

	statusSuccessStyle = lipgloss.NewStyle().Foreground(colorGreen)
	statusErrorStyle   = lipgloss.NewStyle().Foreground(colorRed)
	statusWarningStyle = lipgloss.NewStyle().Foreground(colorYellow)
)

// Progress stage styles.
var (
	stagePendingStyle   = lipgloss.NewStyle().Foreground(colorDim)
	stageActiveStyle    = lipgloss.NewStyle().Foreground(colorOrange).Bold(true)
	stageCompletedStyle = lipgloss.NewStyle().Foreground(colorGreen)
	stageErrorStyle     = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
)

// Run badge styles.
var (
	badgeIdleStyle    = lipgloss.NewStyle().Foreground(colorDim)
	badgeActiveStyle  = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	badgeWaitingStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	badgeStopStyle    = lipgloss.NewStyle().Foreground(colorOrange).Bold(true)
)

// Overlay styles.
var (
	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorWhite).
			Padding(1, 2)

	overlayTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorWhite).
				MarginBottom(1)

	overlayDimStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// Key hint styles for status bar.
var (
	keyStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	hintStyle = lipgloss.NewStyle().Foreground(colorDim)
)
