package tui

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/swingset/internal/domain"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle state-specific keys
	switch m.State {
	case StateHelp:
		m.State = StateBrowsing
		return m, nil

	case StateConfirmDelete:
		var confirmed, decided bool
		m.Confirm, confirmed, decided = m.Confirm.Update(msg)
		if !decided {
			return m, nil
		}
		m.State = StateBrowsing
		id := m.pendingDelete
		m.pendingDelete = ""
		if confirmed && id != "" {
			return m, DeletePlaygroundCmd(m.Actions, id)
		}
		return m, nil

	case StateEditNotes:
		var cmd tea.Cmd
		var submitted bool
		m.Notes, cmd, submitted = m.Notes.Update(msg)
		if m.Notes.IsVisible() {
			return m, cmd
		}
		m.State = StateBrowsing
		id := m.pendingEdit
		m.pendingEdit = ""
		if submitted && id != "" {
			return m, SetNotesCmd(m.Actions, id, m.Notes.Value())
		}
		return m, nil
	}

	// Search typing owns the keyboard
	if m.List.IsSearchTyping() {
		var cmd tea.Cmd
		m.List, cmd = m.List.Update(msg)
		m.syncSearch()
		return m, cmd
	}

	// Global keys
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Search):
		cmd := m.List.StartSearch()
		return m, cmd

	case key.Matches(msg, Keys.Escape):
		if m.List.IsSearching() {
			m.List.ClearSearch()
			m.syncSearch()
		}
		return m, nil

	case key.Matches(msg, Keys.Sort):
		m.setSort(m.Store.SortBy().Next())
		return m, nil

	case key.Matches(msg, Keys.Rating):
		f := m.Store.FilterBy()
		f.Ratings = nextRatingFilter(f.Ratings)
		m.setFilter(f)
		return m, nil

	case key.Matches(msg, Keys.Photos):
		f := m.Store.FilterBy()
		f.HasPhotos = nextPhotosFilter(f.HasPhotos)
		m.setFilter(f)
		return m, nil

	case key.Matches(msg, Keys.Refresh):
		m.Loading = true
		m.List.SetLoading(true)
		return m, LoadPlaygroundsCmd(m.Actions)

	case key.Matches(msg, Keys.Delete):
		if p, ok := m.List.Selected(); ok {
			m.pendingDelete = p.ID
			m.Confirm.Show("Delete playground?", p.Name)
			m.State = StateConfirmDelete
		}
		return m, nil

	case key.Matches(msg, Keys.Undo):
		return m, UndoCmd(m.Actions)

	case key.Matches(msg, Keys.Notes):
		p, ok := m.List.Selected()
		if !ok {
			return m, nil
		}
		m.pendingEdit = p.ID
		m.State = StateEditNotes
		return m, m.Notes.Show("Notes for "+p.Name, p.Notes)

	case key.Matches(msg, Keys.RatingUp), key.Matches(msg, Keys.RatingDown):
		p, ok := m.List.Selected()
		if !ok {
			return m, nil
		}
		rating := p.Rating + 1
		if key.Matches(msg, Keys.RatingDown) {
			rating = p.Rating - 1
		}
		if rating < domain.MinRating || rating > domain.MaxRating {
			return m, nil
		}
		return m, SetRatingCmd(m.Actions, p.ID, rating)

	case key.Matches(msg, Keys.Save):
		if m.Saver == nil {
			return m, nil
		}
		return m, SaveCmd(m.Saver)

	case key.Matches(msg, Keys.Retry):
		if m.Toast != nil && m.Toast.OnAction != nil {
			fn := m.Toast.OnAction
			m.Toast = nil
			return m, RetryCmd(fn)
		}
		return m, nil
	}

	// Everything else is list navigation
	var cmd tea.Cmd
	m.List, cmd = m.List.Update(msg)
	m.syncSelection()
	return m, cmd
}

func (m *Model) setSort(k domain.SortKey) {
	if err := m.Store.SetSortBy(k); err != nil {
		return
	}
	m.refresh()
}

func (m *Model) setFilter(f domain.Filter) {
	if err := m.Store.SetFilterBy(f); err != nil {
		return
	}
	m.refresh()
}

// syncSearch pushes the search box text into the store filter
func (m *Model) syncSearch() {
	f := m.Store.FilterBy()
	if q := m.List.Query(); q != f.Search {
		f.Search = q
		m.setFilter(f)
	}
}

func (m *Model) syncSelection() {
	if p, ok := m.List.Selected(); ok {
		m.Inspector.SetItem(&p)
	} else {
		m.Inspector.SetItem(nil)
	}
}

// nextRatingFilter cycles: all -> 5 -> 4+ -> 3+ -> 2+ -> all
func nextRatingFilter(cur []int) []int {
	if len(cur) == 0 {
		return []int{domain.MaxRating}
	}
	lowest := slices.Min(cur)
	if lowest <= domain.MinRating+1 {
		return nil
	}
	next := make([]int, 0, domain.MaxRating-lowest+2)
	for r := lowest - 1; r <= domain.MaxRating; r++ {
		next = append(next, r)
	}
	return next
}

// nextPhotosFilter cycles: any -> with photos -> without photos -> any
func nextPhotosFilter(cur *bool) *bool {
	switch {
	case cur == nil:
		v := true
		return &v
	case *cur:
		v := false
		return &v
	default:
		return nil
	}
}
