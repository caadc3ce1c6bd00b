package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mmcdole/swingset/internal/domain"
	"github.com/mmcdole/swingset/internal/geo"
	"github.com/mmcdole/swingset/internal/query"
	"github.com/mmcdole/swingset/internal/tui/styles"
	"github.com/spf13/cobra"
)

// listFlags narrow and order the list command output. Zero values fall back
// to the saved view preferences.
type listFlags struct {
	sort    string
	ratings []int
	photos  string
	search  string
	near    string
	ids     bool
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List playgrounds",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts.app, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.sort, "sort", "s", "", "sort by name, rating, dateAdded or distance")
	cmd.Flags().IntSliceVarP(&flags.ratings, "rating", "r", nil, "only these ratings (repeatable, e.g. -r 4,5)")
	cmd.Flags().StringVar(&flags.photos, "photos", "", "yes to require photos, no to exclude them")
	cmd.Flags().StringVarP(&flags.search, "search", "q", "", "fuzzy match on name or address")
	cmd.Flags().StringVar(&flags.near, "near", "", "reference point \"lat,lon\" for distance (default: configured home)")
	cmd.Flags().BoolVar(&flags.ids, "ids", false, "print only IDs, one per line")
	return cmd
}

func runList(cmd *cobra.Command, a *app, flags listFlags) error {
	key := a.store.SortBy()
	if flags.sort != "" {
		k, err := domain.ParseSortKey(flags.sort)
		if err != nil {
			return err
		}
		key = k
	}

	filter := a.store.FilterBy()
	if cmd.Flags().Changed("rating") {
		filter.Ratings = flags.ratings
	}
	if flags.photos != "" {
		v, err := parseYesNo(flags.photos)
		if err != nil {
			return err
		}
		filter.HasPhotos = &v
	}
	if cmd.Flags().Changed("search") {
		filter.Search = flags.search
	}
	if err := filter.Validate(); err != nil {
		return err
	}

	ref := a.home
	if flags.near != "" {
		c, err := geo.ParseCoordinates(flags.near)
		if err != nil {
			return err
		}
		ref = &c
	}

	list := query.Query(a.store.Playgrounds(), key, filter, ref)
	out := cmd.OutOrStdout()
	if flags.ids {
		for _, p := range list {
			fmt.Fprintln(out, p.ID)
		}
		return nil
	}
	if len(list) == 0 {
		fmt.Fprintln(out, "No playgrounds.")
		return nil
	}
	renderTable(out, list, ref)
	return nil
}

func renderTable(w io.Writer, list []domain.Playground, ref *domain.Coordinates) {
	headers := []string{"ID", "NAME", "RATING", "ADDRESS", "PHOTOS", "ADDED"}
	if ref != nil {
		headers = append(headers, "DISTANCE")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.DimStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.TitleStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, p := range list {
		row := []string{
			shortID(p.ID),
			styles.Truncate(p.Name, 32),
			p.Stars(),
			styles.Truncate(p.Location.Address, 40),
			strconv.Itoa(len(p.Photos)),
			p.DateAdded.Local().Format("2006-01-02"),
		}
		if ref != nil {
			dist := "-"
			if km, ok := geo.DistanceTo(ref, p); ok {
				dist = geo.FormatDistance(km)
			}
			row = append(row, dist)
		}
		t.Row(row...)
	}
	fmt.Fprintln(w, t.Render())
}

// shortID trims UUIDs for display; list accepts the prefix back
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true":
		return true, nil
	case "no", "n", "false":
		return false, nil
	default:
		return false, fmt.Errorf("%w: expected yes or no, got %q", domain.ErrValidation, s)
	}
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var (
		draft  domain.Draft
		coords string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new playground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if coords != "" {
				c, err := geo.ParseCoordinates(coords)
				if err != nil {
					return err
				}
				draft.Location.Coordinates = &c
			}
			p, err := opts.app.store.AddPlayground(cmd.Context(), draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", p.Name, p.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&draft.Name, "name", "n", "", "playground name")
	cmd.Flags().StringVarP(&draft.Location.Address, "address", "a", "", "street address")
	cmd.Flags().StringVarP(&coords, "coords", "c", "", "coordinates as \"lat,lon\"")
	cmd.Flags().IntVarP(&draft.Rating, "rating", "r", 0, "rating from 1 to 5 (required)")
	cmd.Flags().StringVar(&draft.Notes, "notes", "", "free-form notes")
	cmd.Flags().StringArrayVarP(&draft.Photos, "photo", "p", nil, "photo reference (repeatable)")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	var (
		name, address, coords, notes string
		rating                       int
		photos                       []string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a playground",
		Long: `Change fields of a playground. Only the flags given are applied.
Pass --coords "" to remove the coordinates and --photo "" to clear photos.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			id, err := a.resolveID(args[0])
			if err != nil {
				return err
			}
			current, _ := a.store.Get(id)

			var patch domain.Patch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("address") || flags.Changed("coords") {
				loc := current.Location.Clone()
				if flags.Changed("address") {
					loc.Address = address
				}
				if flags.Changed("coords") {
					loc.Coordinates = nil
					if strings.TrimSpace(coords) != "" {
						c, err := geo.ParseCoordinates(coords)
						if err != nil {
							return err
						}
						loc.Coordinates = &c
					}
				}
				patch.Location = &loc
			}
			if flags.Changed("rating") {
				patch.Rating = &rating
			}
			if flags.Changed("notes") {
				patch.Notes = &notes
			}
			if flags.Changed("photo") {
				kept := []string{}
				for _, ph := range photos {
					if ph != "" {
						kept = append(kept, ph)
					}
				}
				patch.Photos = &kept
			}
			if patch.IsEmpty() {
				return fmt.Errorf("%w: nothing to change", domain.ErrValidation)
			}

			p, err := a.store.UpdatePlayground(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%s)\n", p.Name, p.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "playground name")
	cmd.Flags().StringVarP(&address, "address", "a", "", "street address")
	cmd.Flags().StringVarP(&coords, "coords", "c", "", "coordinates as \"lat,lon\"")
	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "rating from 1 to 5")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().StringArrayVarP(&photos, "photo", "p", nil, "photo reference (repeatable, replaces the current set)")
	return cmd
}

func newRmCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a playground",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			id, err := a.resolveID(args[0])
			if err != nil {
				return err
			}
			p, err := a.store.DeletePlaygroundWithUndo(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", p.Name, p.ID)
			return nil
		},
	}
}
