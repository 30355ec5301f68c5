// Package caseselect lists the available cases with fuzzy filtering.
package caseselect

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/tu613/vet-learning-app/internal/persona"
	"github.com/tu613/vet-learning-app/internal/refdata"
	"github.com/tu613/vet-learning-app/internal/screen"
	"github.com/tu613/vet-learning-app/internal/ui/components"
	"github.com/tu613/vet-learning-app/internal/ui/layout"
	"github.com/tu613/vet-learning-app/internal/ui/theme"
)

// Catalog serves cases and the reference data status. *refdata.Library
// implements it.
type Catalog interface {
	Cases(ctx context.Context) ([]refdata.CaseScenario, error)
	Reference(ctx context.Context) refdata.Reference
	Refresh(ctx context.Context) refdata.Reference
}

// casesLoadedMsg carries the result of a (re)load.
type casesLoadedMsg struct {
	cases    []refdata.CaseScenario
	warnings []string
	err      error
}

// CaseSelectScreen shows the case list.
type CaseSelectScreen struct {
	catalog Catalog

	cases    []refdata.CaseScenario
	visible  []int
	cursor   int
	scroll   int
	loading  bool
	err      string
	warnings []string

	filtering bool
	filter    components.TextInput
}

var _ screen.Screen = (*CaseSelectScreen)(nil)
var _ screen.KeyHintProvider = (*CaseSelectScreen)(nil)
var _ screen.InputCapturer = (*CaseSelectScreen)(nil)

// New creates the case list. Cases load when the screen initialises.
func New(catalog Catalog) *CaseSelectScreen {
	f := components.NewTextInput("", "filter cases", 40)
	f.Blur()
	return &CaseSelectScreen{
		catalog: catalog,
		loading: true,
		filter:  f,
	}
}

func (s *CaseSelectScreen) Init() tea.Cmd {
	return s.load(false)
}

func (s *CaseSelectScreen) Title() string {
	return "Choose a Case"
}

func (s *CaseSelectScreen) CapturingInput() bool {
	return s.filtering
}

func (s *CaseSelectScreen) KeyHints() []layout.KeyHint {
	if s.filtering {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Apply"},
			{Key: "Esc", Description: "Clear filter"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "/", Description: "Filter"},
		{Key: "r", Description: "Refresh"},
		{Key: "h", Description: "History"},
		{Key: "L", Description: "Log out"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *CaseSelectScreen) load(refresh bool) tea.Cmd {
	catalog := s.catalog
	return func() tea.Msg {
		ctx := context.Background()
		var ref refdata.Reference
		if refresh {
			ref = catalog.Refresh(ctx)
		} else {
			ref = catalog.Reference(ctx)
		}
		cases, err := catalog.Cases(ctx)
		return casesLoadedMsg{cases: cases, warnings: ref.Warnings, err: err}
	}
}

func (s *CaseSelectScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case casesLoadedMsg:
		s.loading = false
		s.warnings = msg.warnings
		s.err = ""
		if msg.err != nil {
			s.err = msg.err.Error()
			s.cases = nil
		} else {
			s.cases = msg.cases
		}
		s.applyFilter()
		return s, nil

	case tea.KeyPressMsg:
		if s.filtering {
			return s.handleFilterKey(msg)
		}
		return s.handleKey(msg)
	}

	if s.filtering {
		var cmd tea.Cmd
		s.filter, cmd = s.filter.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *CaseSelectScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.visible)-1 {
			s.cursor++
		}
	case "/":
		s.filtering = true
		return s, s.filter.Focus()
	case "r":
		if !s.loading {
			s.loading = true
			return s, s.load(true)
		}
	case "h":
		return s, screen.Emit(screen.OpenHistoryMsg{})
	case "L":
		return s, screen.Emit(screen.LogoutMsg{})
	case "enter":
		if c, ok := s.Selected(); ok {
			return s, screen.Emit(screen.SelectCaseMsg{Case: c})
		}
	}
	return s, nil
}

func (s *CaseSelectScreen) handleFilterKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.filtering = false
		s.filter.Reset()
		s.filter.Blur()
		s.applyFilter()
		return s, nil
	case "enter":
		s.filtering = false
		s.filter.Blur()
		return s, nil
	case "up", "down":
		return s.handleKey(msg)
	}

	var cmd tea.Cmd
	s.filter, cmd = s.filter.Update(msg)
	s.applyFilter()
	return s, cmd
}

func (s *CaseSelectScreen) applyFilter() {
	s.visible = FilterCases(s.cases, s.filter.Value())
	if s.cursor >= len(s.visible) {
		s.cursor = len(s.visible) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// Selected returns the case under the cursor.
func (s *CaseSelectScreen) Selected() (refdata.CaseScenario, bool) {
	if s.cursor < 0 || s.cursor >= len(s.visible) {
		return refdata.CaseScenario{}, false
	}
	return s.cases[s.visible[s.cursor]], true
}

func (s *CaseSelectScreen) View(width, height int) string {
	var top []string
	for _, w := range s.warnings {
		top = append(top, theme.Warning.Render("  ⚠ "+w))
	}
	if s.filtering || s.filter.Value() != "" {
		top = append(top, "  "+s.filter.View())
	}
	if len(top) > 0 {
		top = append(top, "")
	}

	var body []string
	switch {
	case s.loading:
		body = []string{theme.Hint.Render("  Loading cases...")}
	case s.err != "":
		body = []string{
			theme.Danger.Render("  Could not load cases: " + s.err),
			theme.Hint.Render("  Press r to try again."),
		}
	case len(s.cases) == 0:
		body = []string{theme.Hint.Render("  No cases are available. Load some with `vetlearn seed`.")}
	case len(s.visible) == 0:
		body = []string{theme.Hint.Render("  No case matches the filter.")}
	default:
		body = s.renderList(width, height-len(top))
	}

	return strings.Join(append(top, body...), "\n")
}

func (s *CaseSelectScreen) renderList(width, height int) []string {
	menu := s.menu(width)
	lines := menu.Lines()

	// Keep the cursor row and its caption in view.
	row := menu.SelectedLine()
	if row < s.scroll {
		s.scroll = row
	}
	if row+1 >= s.scroll+height {
		s.scroll = row + 2 - height
	}
	window, off := layout.Window(lines, s.scroll, height)
	s.scroll = off

	counter := theme.Hint.Render(fmt.Sprintf("  %d of %d cases", len(s.visible), len(s.cases)))
	if height > 2 && len(window) == height {
		window = window[:height-1]
	}
	return append(window, counter)
}

func (s *CaseSelectScreen) menu(width int) components.Menu {
	items := make([]components.MenuItem, len(s.visible))
	capWidth := width - 8
	for i, idx := range s.visible {
		c := s.cases[idx]
		caption := persona.Caption(c)
		if capWidth > 3 && lipgloss.Width(caption) > capWidth {
			caption = string([]rune(caption)[:capWidth-3]) + "..."
		}
		items[i] = components.MenuItem{
			Label:  c.Title(),
			Detail: caption,
		}
	}
	m := components.NewMenu(items)
	m.Selected = s.cursor
	return m
}
