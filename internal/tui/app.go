package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/swingset/internal/actions"
	"github.com/mmcdole/swingset/internal/domain"
	"github.com/mmcdole/swingset/internal/playground"
	"github.com/mmcdole/swingset/internal/tui/components"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
	StateConfirmDelete
	StateEditNotes
)

// Layout proportions
const (
	ListColumnPercent = 60
	MinColumnWidth    = 20

	// Vertical layout: header + footer lines
	ChromeHeight = 2
)

// UndoWindow is how long a delete can be undone from the UI
const UndoWindow = actions.UndoWindow

// Options wires the model to the rest of the application
type Options struct {
	Store   *playground.Store
	Actions *actions.Actions
	Saver   Saver
	Home    *domain.Coordinates
	Toasts  <-chan actions.Toast
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State   ApplicationState
	Ready   bool
	Loading bool

	// Services
	Store   *playground.Store
	Actions *actions.Actions
	Saver   Saver
	Home    *domain.Coordinates

	// UI Components
	List      *components.PlaygroundList
	Inspector components.Inspector
	Confirm   components.ConfirmModal
	Notes     components.InputModal
	Help      help.Model

	// Dimensions
	Width  int
	Height int

	// Notifications
	toasts  <-chan actions.Toast
	Toast   *actions.Toast
	toastID int

	// Undo window; bumping undoGen invalidates pending expiries
	undoGen       int
	undoID        string
	pendingDelete string

	// Playground whose notes are being edited
	pendingEdit string
}

// NewModel creates a new application model
func NewModel(opts Options) Model {
	list := components.NewPlaygroundList("Playgrounds")
	list.SetReference(opts.Home)
	inspector := components.NewInspector()
	inspector.SetReference(opts.Home)

	return Model{
		State:     StateBrowsing,
		Loading:   true,
		Store:     opts.Store,
		Actions:   opts.Actions,
		Saver:     opts.Saver,
		Home:      opts.Home,
		List:      list,
		Inspector: inspector,
		Confirm:   components.NewConfirmModal(),
		Notes:     components.NewInputModal(),
		Help:      help.New(),
		toasts:    opts.Toasts,
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		LoadPlaygroundsCmd(m.Actions),
		WaitForToastCmd(m.toasts),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case ToastMsg:
		t := msg.Toast
		m.toastID++
		m.Toast = &t
		return m, tea.Batch(ClearToastCmd(m.toastID, t.Duration), WaitForToastCmd(m.toasts))

	case ClearToastMsg:
		if msg.ID == m.toastID {
			m.Toast = nil
		}
		return m, nil

	case PlaygroundsLoadedMsg:
		m.Loading = false
		m.List.SetLoading(false)
		m.List.SetQuery(m.Store.FilterBy().Search)
		m.refresh()
		return m, nil

	case PlaygroundChangedMsg:
		m.refresh()
		return m, nil

	case PlaygroundDeletedMsg:
		m.refresh()
		if msg.Err != nil {
			return m, nil
		}
		return m, m.openUndoWindow(msg.Action.Snapshot.ID)

	case RetriedMsg:
		m.refresh()
		// A retried delete registers a fresh undo that needs its own window
		if pending, ok := m.Actions.PendingUndo(); ok && pending.Snapshot.ID != m.undoID {
			return m, m.openUndoWindow(pending.Snapshot.ID)
		}
		return m, nil

	case UndoneMsg:
		m.undoGen++
		m.undoID = ""
		m.refresh()
		return m, nil

	case UndoExpiredMsg:
		if msg.Gen == m.undoGen {
			m.Actions.DismissUndo()
			m.undoID = ""
		}
		return m, nil

	case SavedMsg:
		if msg.Err == nil {
			t := actions.NewToast("Saved", "", false, actions.WithDuration(2*time.Second))
			m.toastID++
			m.Toast = &t
			return m, ClearToastCmd(m.toastID, t.Duration)
		}
		return m, nil
	}

	// Cursor blink and other input plumbing
	var cmd tea.Cmd
	m.List, cmd = m.List.Update(msg)
	return m, cmd
}

// openUndoWindow starts the expiry timer for the undo of id, superseding any
// earlier one
func (m *Model) openUndoWindow(id string) tea.Cmd {
	m.undoGen++
	m.undoID = id
	return UndoExpiryCmd(m.undoGen, UndoWindow)
}

// refresh re-derives the visible list from the store
func (m *Model) refresh() {
	m.List.SetItems(m.Store.View(m.Home))
	m.syncSelection()
}

// updateLayout sizes the list and inspector to the window
func (m *Model) updateLayout() {
	contentHeight := max(m.Height-ChromeHeight, 3)
	listWidth := max(m.Width*ListColumnPercent/100, MinColumnWidth)
	inspectorWidth := max(m.Width-listWidth, 0)

	m.List.SetSize(listWidth, contentHeight)
	m.Inspector.SetSize(inspectorWidth, contentHeight)
	m.Help.Width = m.Width
}
