package components

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/swingset/internal/domain"
	"github.com/mmcdole/swingset/internal/geo"
	"github.com/mmcdole/swingset/internal/tui/styles"
	"github.com/sahilm/fuzzy"
	"golang.org/x/text/unicode/norm"
)

// Layout constants
const (
	BorderWidth          = 2
	BorderHeight         = 2
	ScrollIndicatorLines = 2
)

// PlaygroundList is a scrollable list of playgrounds with a search bar.
// It only displays; sorting and filtering happen in the store.
type PlaygroundList struct {
	keys  ListKeyMap
	title string

	items  []domain.Playground
	ref    *domain.Coordinates
	cursor int
	offset int

	width      int
	height     int
	maxVisible int
	focused    bool
	loading    bool

	// Search state
	searchActive bool
	searchInput  textinput.Model
}

// NewPlaygroundList creates an empty list
func NewPlaygroundList(title string) *PlaygroundList {
	ti := textinput.New()
	ti.Placeholder = "type to search..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &PlaygroundList{
		keys:        DefaultListKeyMap(),
		title:       title,
		searchInput: ti,
		focused:     true,
	}
}

// Update handles navigation and search typing
func (l *PlaygroundList) Update(msg tea.Msg) (*PlaygroundList, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)

	// Typing mode: everything goes to the search input
	if l.IsSearchTyping() {
		if ok {
			switch {
			case key.Matches(keyMsg, l.keys.Escape):
				l.ClearSearch()
				return l, nil
			case key.Matches(keyMsg, l.keys.Enter):
				l.searchInput.Blur()
				return l, nil
			case keyMsg.String() == "backspace" && l.searchInput.Value() == "":
				l.ClearSearch()
				return l, nil
			}
		}
		var cmd tea.Cmd
		l.searchInput, cmd = l.searchInput.Update(msg)
		return l, cmd
	}

	if !ok {
		return l, nil
	}

	if l.searchActive {
		switch {
		case key.Matches(keyMsg, l.keys.Escape):
			l.ClearSearch()
			return l, nil
		case key.Matches(keyMsg, l.keys.Search):
			l.searchInput.Focus()
			return l, nil
		}
	}

	count := len(l.items)
	if count == 0 {
		return l, nil
	}

	switch {
	case key.Matches(keyMsg, l.keys.Down):
		if l.cursor < count-1 {
			l.cursor++
			l.ensureVisible()
		}
	case key.Matches(keyMsg, l.keys.Up):
		if l.cursor > 0 {
			l.cursor--
			l.ensureVisible()
		}
	case key.Matches(keyMsg, l.keys.Home):
		l.cursor = 0
		l.offset = 0
	case key.Matches(keyMsg, l.keys.End):
		l.cursor = count - 1
		l.ensureVisible()
	case key.Matches(keyMsg, l.keys.HalfDown):
		l.cursor = min(l.cursor+max(l.maxVisible/2, 1), count-1)
		l.ensureVisible()
	case key.Matches(keyMsg, l.keys.HalfUp):
		l.cursor = max(l.cursor-max(l.maxVisible/2, 1), 0)
		l.ensureVisible()
	}
	return l, nil
}

// SetItems replaces the displayed playgrounds, keeping the cursor on the
// same playground when it is still present.
func (l *PlaygroundList) SetItems(items []domain.Playground) {
	var selectedID string
	if p, ok := l.Selected(); ok {
		selectedID = p.ID
	}
	l.items = items

	l.cursor = min(l.cursor, max(len(items)-1, 0))
	for i, p := range items {
		if p.ID == selectedID {
			l.cursor = i
			break
		}
	}
	l.ensureVisible()
}

// SetReference sets the point distances are shown from
func (l *PlaygroundList) SetReference(ref *domain.Coordinates) {
	l.ref = ref
}

// SetSize sets the outer size including the border
func (l *PlaygroundList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.recalcMaxVisible()
	l.ensureVisible()
}

// SetFocused toggles the active border
func (l *PlaygroundList) SetFocused(focused bool) {
	l.focused = focused
}

// SetLoading shows a loading line instead of items
func (l *PlaygroundList) SetLoading(loading bool) {
	l.loading = loading
}

// Selected returns the playground under the cursor
func (l *PlaygroundList) Selected() (domain.Playground, bool) {
	if l.cursor < 0 || l.cursor >= len(l.items) {
		return domain.Playground{}, false
	}
	return l.items[l.cursor], true
}

// SelectedIndex returns the cursor position
func (l *PlaygroundList) SelectedIndex() int {
	return l.cursor
}

// Len returns the number of displayed playgrounds
func (l *PlaygroundList) Len() int {
	return len(l.items)
}

// StartSearch opens the search bar and focuses it
func (l *PlaygroundList) StartSearch() tea.Cmd {
	l.searchActive = true
	l.searchInput.Focus()
	l.recalcMaxVisible()
	return textinput.Blink
}

// IsSearching returns true while the search bar is shown
func (l *PlaygroundList) IsSearching() bool {
	return l.searchActive
}

// IsSearchTyping returns true while keystrokes go to the search input
func (l *PlaygroundList) IsSearchTyping() bool {
	return l.searchActive && l.searchInput.Focused()
}

// Query returns the current search text
func (l *PlaygroundList) Query() string {
	if !l.searchActive {
		return ""
	}
	return l.searchInput.Value()
}

// SetQuery restores a saved search without focusing the input
func (l *PlaygroundList) SetQuery(q string) {
	if q == "" {
		l.ClearSearch()
		return
	}
	l.searchActive = true
	l.searchInput.SetValue(q)
	l.searchInput.Blur()
	l.recalcMaxVisible()
}

// ClearSearch closes the search bar
func (l *PlaygroundList) ClearSearch() {
	l.searchActive = false
	l.searchInput.SetValue("")
	l.searchInput.Blur()
	l.recalcMaxVisible()
}

func (l *PlaygroundList) View() string {
	style := styles.InactiveBorder
	if l.focused {
		style = styles.ActiveBorder
	}

	// Subtract frame (border) size so total rendered size equals l.width x l.height
	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(l.width-frameW, 0)).
		Height(max(l.height-frameH, 0)).
		Render(l.renderContent())
}

// Internal methods

func (l *PlaygroundList) recalcMaxVisible() {
	// Reserve space for the title line and scroll indicators
	interiorHeight := l.height - BorderHeight
	l.maxVisible = interiorHeight - ScrollIndicatorLines - 1
	if l.searchActive {
		l.maxVisible--
	}
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
}

func (l *PlaygroundList) ensureVisible() {
	if l.maxVisible <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
}

func (l *PlaygroundList) renderContent() string {
	itemWidth := max(l.width-BorderWidth, 10)

	titleLine := styles.AccentStyle.Render(styles.Truncate(fmt.Sprintf("%s (%d)", l.title, len(l.items)), itemWidth))

	if l.loading {
		return titleLine + "\n \n" + styles.DimStyle.Render("Loading...") + "\n "
	}

	if len(l.items) == 0 {
		emptyMsg := styles.DimStyle.Render("No playgrounds yet")
		if l.Query() != "" {
			emptyMsg = styles.DimStyle.Render("No matches")
		}
		content := titleLine + "\n \n" + emptyMsg + "\n "
		if l.searchActive {
			content += "\n" + l.renderSearchBar(itemWidth)
		}
		return content
	}

	end := min(l.offset+l.maxVisible, len(l.items))
	lines := make([]string, 0, end-l.offset)
	query := l.Query()
	for i := l.offset; i < end; i++ {
		lines = append(lines, l.renderItem(l.items[i], query, i == l.cursor, itemWidth))
	}

	// Always reserve the indicator lines to prevent layout shifts
	header := " "
	if l.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < len(l.items) {
		footer = styles.DimStyle.Render("↓ more")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if l.searchActive {
		content += "\n" + l.renderSearchBar(itemWidth)
	}
	return content
}

func (l *PlaygroundList) renderItem(p domain.Playground, query string, selected bool, width int) string {
	stars := styles.RenderStars(p.Rating, domain.MaxRating)

	var suffix string
	if km, ok := geo.DistanceTo(l.ref, p); ok {
		suffix = geo.FormatDistance(km)
	}
	if p.HasPhotos() {
		suffix = strings.TrimSpace(suffix + " " + styles.PhotoGlyph)
	}

	nameWidth := width - lipgloss.Width(stars) - lipgloss.Width(suffix) - 5
	name := styles.Truncate(p.Name, max(nameWidth, 4))

	dim := styles.DimGray
	parts := []styles.RowPart{
		{Text: stars, Styled: true},
		{Text: " "},
		{Text: highlightMatches(name, matchedIndexes(query, name), selected), Styled: true},
	}
	if suffix != "" {
		parts = append(parts, styles.RowPart{Text: "  " + suffix, Foreground: &dim})
	}
	return styles.RenderListRow(parts, selected, width)
}

func (l *PlaygroundList) renderSearchBar(width int) string {
	l.searchInput.Width = max(width-4, 1)
	return l.searchInput.View()
}

// matchedIndexes returns the byte offsets in name matched by query. Both
// sides are folded to lower-case base letters first so highlighting agrees
// with the accent-insensitive search filter.
func matchedIndexes(query, name string) []int {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	folded, offsets := foldRunes(name)
	foldedQuery, _ := foldRunes(query)
	matches := fuzzy.Find(string(foldedQuery), []string{string(folded)})
	if len(matches) == 0 {
		return nil
	}

	// Map byte offsets in the folded string back to runes of name
	runeAt := make(map[int]int, len(folded))
	pos := 0
	for i, r := range folded {
		runeAt[pos] = i
		pos += utf8.RuneLen(r)
	}
	out := make([]int, 0, len(matches[0].MatchedIndexes))
	for _, b := range matches[0].MatchedIndexes {
		if i, ok := runeAt[b]; ok {
			out = append(out, offsets[i])
		}
	}
	return out
}

// foldRunes lower-cases s and strips combining marks rune by rune. offsets[i]
// is the byte offset in s of the rune that produced folded[i].
func foldRunes(s string) (folded []rune, offsets []int) {
	for i, r := range s {
		base := r
		if d := []rune(norm.NFD.String(string(r))); len(d) > 0 {
			base = d[0]
		}
		folded = append(folded, unicode.ToLower(base))
		offsets = append(offsets, i)
	}
	return folded, offsets
}

// highlightMatches styles matched characters of text
func highlightMatches(text string, indexes []int, selected bool) string {
	normal := lipgloss.NewStyle().Foreground(styles.LightGray)
	match := styles.MatchHighlightStyle
	if selected {
		normal = lipgloss.NewStyle().Foreground(styles.White).Background(styles.SlateLight)
		match = styles.MatchHighlightSelectedStyle
	}
	if len(indexes) == 0 {
		return normal.Render(text)
	}

	matchSet := make(map[int]bool, len(indexes))
	for _, idx := range indexes {
		matchSet[idx] = true
	}

	// Batch consecutive characters with the same style
	var b, run strings.Builder
	runIsMatch := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if runIsMatch {
			b.WriteString(match.Render(run.String()))
		} else {
			b.WriteString(normal.Render(run.String()))
		}
		run.Reset()
	}
	for i, r := range text {
		if isMatch := matchSet[i]; isMatch != runIsMatch {
			flush()
			runIsMatch = isMatch
		}
		run.WriteRune(r)
	}
	flush()
	return b.String()
}
