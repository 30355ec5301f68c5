package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/tu613/vet-learning-app/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	CompactWidthThreshold = 100
)

// KeyHint represents a key binding hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsCompactWidth returns true if the terminal width is in compact range.
func IsCompactWidth(width int) bool {
	return width < CompactWidthThreshold
}

// IsTooSmall returns true if the terminal is below minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage renders the "terminal too small" message.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf(
			"Terminal too small!\n\nPlease resize to at\nleast %d x %d\n\nCurrent: %d x %d",
			MinWidth, MinHeight, width, height,
		))
}

// RenderHeader renders the application header bar. user is shown on the
// right and may be empty before login.
func RenderHeader(title, user string, width int) string {
	brand := "  VetLearn"
	if IsCompactWidth(width) {
		brand = "  VL"
	}
	left := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render(brand)

	center := lipgloss.NewStyle().
		Foreground(theme.Text).
		Render(title)

	right := lipgloss.NewStyle().
		Foreground(theme.Accent).
		Render(user)

	leftLen := lipgloss.Width(left)
	centerLen := lipgloss.Width(center)
	rightLen := lipgloss.Width(right)

	innerWidth := width - 4 // account for border padding
	if innerWidth < 0 {
		innerWidth = 0
	}

	leftGap := (innerWidth-centerLen)/2 - leftLen
	if leftGap < 1 {
		leftGap = 1
	}

	rightGap := innerWidth - leftLen - leftGap - centerLen - rightLen
	if rightGap < 1 {
		rightGap = 1
	}

	content := left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right

	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

// RenderNotice renders a one-line notice bar, or "" for an empty notice.
func RenderNotice(notice string, width int) string {
	if notice == "" {
		return ""
	}
	style := lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		Foreground(theme.Accent)
	if strings.Contains(strings.ToLower(notice), "failed") {
		style = style.Foreground(theme.Error)
	}
	return style.Render(notice)
}

// RenderFooter renders the footer with key hints.
func RenderFooter(hints []KeyHint, width int) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		part := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(h.Key) +
			" " +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(h.Description)
		parts = append(parts, part)
	}

	content := "  " + strings.Join(parts, "   ")

	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

// RenderFrame composes the full frame: header + notice + content + footer.
func RenderFrame(header, notice, content, footer string, width, height int) string {
	top := header
	if notice != "" {
		top += "\n" + notice
	}

	contentHeight := ContentHeight(height, top, footer)
	styledContent := lipgloss.NewStyle().
		Width(width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	return top + "\n" + styledContent + "\n" + footer
}

// ContentHeight returns the rows left for screen content once top and
// footer are drawn.
func ContentHeight(height int, top, footer string) int {
	h := height - lipgloss.Height(top) - lipgloss.Height(footer)
	if h < 0 {
		return 0
	}
	return h
}

// Wrap soft-wraps text to width without styling.
func Wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}

// Window returns at most height lines of lines starting at offset,
// clamping offset into range. The clamped offset is returned too.
func Window(lines []string, offset, height int) ([]string, int) {
	if height <= 0 {
		return nil, 0
	}
	maxOffset := len(lines) - height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + height
	if end > len(lines) {
		end = len(lines)
	}
	return lines[offset:end], offset
}
