package components

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/swingset/internal/tui/styles"
)

// ConfirmModal asks a yes/no question
type ConfirmModal struct {
	keys    ConfirmKeyMap
	visible bool
	title   string
	body    string
}

// NewConfirmModal creates a hidden confirm modal
func NewConfirmModal() ConfirmModal {
	return ConfirmModal{keys: DefaultConfirmKeyMap()}
}

// Show displays the modal
func (m *ConfirmModal) Show(title, body string) {
	m.visible = true
	m.title = title
	m.body = body
}

// Hide dismisses the modal
func (m *ConfirmModal) Hide() {
	m.visible = false
}

// IsVisible returns whether the modal is shown
func (m ConfirmModal) IsVisible() bool {
	return m.visible
}

// Update handles key events. decided is true once the user answered;
// confirmed carries the answer.
func (m ConfirmModal) Update(msg tea.Msg) (modal ConfirmModal, confirmed, decided bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !m.visible || !ok {
		return m, false, false
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		m.Hide()
		return m, true, true
	case key.Matches(keyMsg, m.keys.Deny):
		m.Hide()
		return m, false, true
	}
	return m, false, false
}

// View renders the modal
func (m ConfirmModal) View() string {
	if !m.visible {
		return ""
	}
	content := styles.ModalTitleStyle.Render(m.title) + "\n" +
		styles.SubtitleStyle.Render(m.body) + "\n\n" +
		styles.DimStyle.Render("y confirm · n cancel")
	return styles.ModalStyle.Render(content)
}
