package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/swingset/internal/domain"
	"github.com/mmcdole/swingset/internal/geo"
	"github.com/mmcdole/swingset/internal/tui/styles"
)

const dateLayout = "Jan 2, 2006"

// Inspector displays the details of the selected playground
type Inspector struct {
	item   *domain.Playground
	ref    *domain.Coordinates
	width  int
	height int
}

// NewInspector creates a new inspector component
func NewInspector() Inspector {
	return Inspector{}
}

// SetItem sets the playground to display (nil clears it)
func (i *Inspector) SetItem(p *domain.Playground) {
	i.item = p
}

// SetReference sets the point the distance line is measured from
func (i *Inspector) SetReference(ref *domain.Coordinates) {
	i.ref = ref
}

// SetSize updates the component dimensions
func (i *Inspector) SetSize(width, height int) {
	i.width = width
	i.height = height
}

// HasItem returns true if there is an item to display
func (i Inspector) HasItem() bool {
	return i.item != nil
}

// View renders the component
func (i Inspector) View() string {
	style := styles.InactiveBorder
	frameW, frameH := style.GetFrameSize()
	contentWidth := max(i.width-frameW-2, 10)

	var content string
	if i.item == nil {
		content = styles.DimStyle.Render("Nothing selected")
	} else {
		content = i.render(*i.item, contentWidth)
	}

	// Clip to the available height
	lines := strings.Split(content, "\n")
	if h := i.height - frameH; h > 0 && len(lines) > h {
		lines = lines[:h]
	}

	return style.
		Width(max(i.width-frameW, 0)).
		Height(max(i.height-frameH, 0)).
		Render(strings.Join(lines, "\n"))
}

func (i Inspector) render(p domain.Playground, width int) string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(styles.Truncate(p.Name, width)))
	b.WriteString("\n")
	b.WriteString(styles.RenderStars(p.Rating, domain.MaxRating))
	b.WriteString("\n\n")

	if p.Location.Address != "" {
		b.WriteString(field("Address", p.Location.Address, width))
	}
	if c := p.Location.Coordinates; c != nil {
		b.WriteString(field("Coordinates", c.String(), width))
	}
	if km, ok := geo.DistanceTo(i.ref, p); ok {
		b.WriteString(field("Distance", geo.FormatDistance(km), width))
	}

	photos := "none"
	if n := len(p.Photos); n > 0 {
		photos = fmt.Sprintf("%d", n)
	}
	b.WriteString(field("Photos", photos, width))
	b.WriteString(field("Added", p.DateAdded.Local().Format(dateLayout), width))
	if !p.DateModified.Equal(p.DateAdded) {
		b.WriteString(field("Modified", p.DateModified.Local().Format(dateLayout), width))
	}

	if notes := strings.TrimSpace(p.Notes); notes != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(width).Foreground(styles.LightGray).Render(notes))
	}

	return b.String()
}

func field(label, value string, width int) string {
	l := styles.DimStyle.Render(fmt.Sprintf("%-12s", label))
	return l + styles.SubtitleStyle.Render(styles.Truncate(value, max(width-12, 4))) + "\n"
}
