package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"Quackito/internal/effects"
	"Quackito/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// BarWidth is the number of cells in a stat bar.
const BarWidth = 20

// TimeOfDay buckets the local hour for the greeting.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
	Night     TimeOfDay = "night"
)

var greetings = map[TimeOfDay]string{
	Morning:   "Good morning!",
	Afternoon: "Good afternoon!",
	Evening:   "Good evening!",
	Night:     "Shh... it's nighttime",
}

var moodLines = map[model.Mood]string{
	model.MoodHappy:    "%s is happy!",
	model.MoodContent:  "%s is doing okay",
	model.MoodHungry:   "%s is hungry...",
	model.MoodSad:      "%s is sad...",
	model.MoodTired:    "%s is tired...",
	model.MoodSleeping: "%s is sleeping...",
}

var moodFaces = map[model.Mood]string{
	model.MoodHappy:    "🦆✨",
	model.MoodContent:  "🦆",
	model.MoodHungry:   "🦆🍽",
	model.MoodSad:      "🦆💧",
	model.MoodTired:    "🦆🥱",
	model.MoodSleeping: "🦆💤",
}

// Status is everything shown on the duck screen.
type Status struct {
	Name     string
	Code     string
	Snapshot model.Snapshot
	Mood     model.Mood
	Conn     string
}

// PartOfDay classifies t by its local hour.
func PartOfDay(t time.Time) TimeOfDay {
	switch h := t.Hour(); {
	case h >= 6 && h < 12:
		return Morning
	case h >= 12 && h < 18:
		return Afternoon
	case h >= 18 && h < 22:
		return Evening
	default:
		return Night
	}
}

// Greeting returns the greeting for the time of day.
func Greeting(t time.Time) string {
	return greetings[PartOfDay(t)]
}

// MoodLine describes the duck's mood in a sentence.
func MoodLine(name string, m model.Mood) string {
	f, ok := moodLines[m]
	if !ok {
		f = moodLines[model.MoodContent]
	}
	return fmt.Sprintf(f, name)
}

// Stat bar colors.
const (
	ColorGood = lipgloss.Color("#4caf50")
	ColorFair = lipgloss.Color("#ff9800")
	ColorLow  = lipgloss.Color("#f44336")
)

var (
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	strong = lipgloss.NewStyle().Bold(true)

	greetingStyles = map[TimeOfDay]lipgloss.Style{
		Morning:   lipgloss.NewStyle().Foreground(lipgloss.Color("#fcb69f")).Bold(true),
		Afternoon: lipgloss.NewStyle().Foreground(lipgloss.Color("#a8edea")).Bold(true),
		Evening:   lipgloss.NewStyle().Foreground(lipgloss.Color("#a6c1ee")).Bold(true),
		Night:     lipgloss.NewStyle().Foreground(lipgloss.Color("#4a69bd")).Bold(true),
	}
)

// BarColor picks the fill color for a stat value.
func BarColor(v float64) lipgloss.Color {
	switch {
	case v > 60:
		return ColorGood
	case v > 30:
		return ColorFair
	default:
		return ColorLow
	}
}

// Bar draws a stat as a fixed-width colored bar followed by its rounded percentage.
func Bar(v float64) string {
	pct := int(math.Round(min(max(v, 0), 100)))
	filled := pct * BarWidth / 100
	fill := lipgloss.NewStyle().Foreground(BarColor(v))
	return fill.Render(strings.Repeat("█", filled)) +
		dim.Render(strings.Repeat("░", BarWidth-filled)) +
		fmt.Sprintf(" %3d%%", pct)
}

// Dim renders secondary text such as help lines.
func Dim(s string) string {
	return dim.Render(s)
}

// FormatStatus renders the full duck screen.
func FormatStatus(st Status, now time.Time) string {
	var b strings.Builder
	name := st.Name
	if name == "" {
		name = model.DefaultName
	}

	b.WriteString(fmt.Sprintf("%s  %s\n\n", greetingStyles[PartOfDay(now)].Render(Greeting(now)), moodFaces[st.Mood]))
	b.WriteString(strong.Render(MoodLine(name, st.Mood)) + "\n\n")
	b.WriteString(fmt.Sprintf("🍞 Hunger  %s\n", Bar(st.Snapshot.Hunger)))
	b.WriteString(fmt.Sprintf("💛 Happy   %s\n", Bar(st.Snapshot.Happiness)))
	b.WriteString(fmt.Sprintf("⚡ Energy  %s\n\n", Bar(st.Snapshot.Energy)))

	line := fmt.Sprintf("Status: %s", st.Conn)
	if st.Code != "" {
		line += fmt.Sprintf(" | code %s", st.Code)
	}
	if !st.Snapshot.LastUpdated.IsZero() {
		line += fmt.Sprintf(" | updated %s", st.Snapshot.LastUpdated.Local().Format("15:04:05"))
	}
	b.WriteString(dim.Render(line) + "\n")
	return b.String()
}

// FormatBurst lays out a particle burst on one line, each emoji placed at its
// X position plus drift within width columns.
func FormatBurst(ps []effects.Particle, width int) string {
	if len(ps) == 0 || width <= 0 {
		return ""
	}
	cells := make([]string, width)
	for i := range cells {
		cells[i] = " "
	}
	for _, p := range ps {
		col := int((p.X/100)*float64(width) + p.Drift/4)
		col = min(max(col, 0), width-1)
		for cells[col] != " " && col < width-1 {
			col++
		}
		cells[col] = p.Emoji
	}
	return strings.TrimRight(strings.Join(cells, ""), " ")
}
