package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/swingset/internal/domain"
	"github.com/mmcdole/swingset/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	switch m.State {
	case StateHelp:
		return m.renderHelp()
	case StateConfirmDelete:
		return lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.Confirm.View())
	case StateEditNotes:
		return lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.Notes.View())
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.List.View(), m.Inspector.View())
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

// renderHeader shows the app name and the active query parameters
func (m Model) renderHeader() string {
	left := styles.TitleStyle.Render(" swingset")

	sortBy := m.Store.SortBy()
	parts := []string{styles.DimStyle.Render("sort ") + styles.AccentStyle.Render(sortBy.Label())}
	if sortBy == domain.SortByDistance && m.Home == nil {
		parts = append(parts, styles.DimStyle.Render("(no home set)"))
	}
	if f := describeFilter(m.Store.FilterBy()); f != "" {
		parts = append(parts, styles.DimStyle.Render("filter ")+styles.AccentStyle.Render(f))
	}
	right := strings.Join(parts, styles.DimStyle.Render(" · ")) + " "

	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

// renderFooter shows the current toast, or key hints when there is none
func (m Model) renderFooter() string {
	var left string
	switch {
	case m.Loading:
		left = styles.DimStyle.Render(" Loading...")
	case m.Toast != nil:
		text := m.Toast.Title
		if m.Toast.Message != "" {
			text += ": " + m.Toast.Message
		}
		if m.Toast.ActionLabel != "" {
			text += fmt.Sprintf(" (%s: %s)", Keys.Retry.Help().Key, m.Toast.ActionLabel)
		}
		if m.Toast.IsError {
			left = styles.ToastErrorStyle.Render(text)
		} else {
			left = styles.ToastSuccessStyle.Render(text)
		}
	default:
		left = styles.StatusBarStyle.Render(m.Help.ShortHelpView(Keys.ShortHelp()))
	}

	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help ")
	if m.Store.Dirty() {
		right = styles.DimStyle.Render("● ") + right
	}

	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	content := styles.ModalTitleStyle.Render("Keys") + "\n" +
		m.Help.FullHelpView(Keys.FullHelp()) + "\n\n" +
		styles.DimStyle.Render("Press any key to return...")

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(content))
}

// describeFilter summarizes f for the header ("" when it keeps everything)
func describeFilter(f domain.Filter) string {
	var parts []string
	if len(f.Ratings) > 0 {
		lowest := slices.Min(f.Ratings)
		if len(f.Ratings) == 1 {
			parts = append(parts, fmt.Sprintf("%d★", f.Ratings[0]))
		} else if lowest < domain.MaxRating && len(f.Ratings) == domain.MaxRating-lowest+1 {
			parts = append(parts, fmt.Sprintf("%d★+", lowest))
		} else {
			parts = append(parts, fmt.Sprintf("%v★", f.Ratings))
		}
	}
	if f.HasPhotos != nil {
		if *f.HasPhotos {
			parts = append(parts, "with photos")
		} else {
			parts = append(parts, "no photos")
		}
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		parts = append(parts, fmt.Sprintf("%q", s))
	}
	return strings.Join(parts, ", ")
}
