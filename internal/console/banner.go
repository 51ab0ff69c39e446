package console

import (
	"fmt"
	"io"
	"strings"
)

const bannerWidth = 50

// PrintBanner prints the start-up banner.
func PrintBanner(w io.Writer) {
	border := strings.Repeat("#", bannerWidth)
	blank := "#" + strings.Repeat(" ", bannerWidth-2) + "#"
	fmt.Fprintln(w, border)
	fmt.Fprintln(w, blank)
	fmt.Fprintln(w, centered("ACADEMIC RECORD KEEPER", bannerWidth))
	fmt.Fprintln(w, blank)
	fmt.Fprintln(w, border)
}

// PrintSection prints a framed phase header.
func PrintSection(w io.Writer, title string) {
	line := strings.Repeat("=", 42)
	fmt.Fprintln(w)
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, center(title, len(line)))
	fmt.Fprintln(w, line)
}

// PrintReview prints a review block with aligned labels.
func PrintReview(w io.Writer, title string, fields [][2]string) {
	fmt.Fprintf(w, "\n--- REVIEW %s ---\n", strings.ToUpper(title))
	width := 0
	for _, f := range fields {
		if len(f[0]) > width {
			width = len(f[0])
		}
	}
	for _, f := range fields {
		fmt.Fprintf(w, "%-*s: %s\n", width, f[0], f[1])
	}
}

func centered(text string, width int) string {
	return "#" + center(text, width-2) + "#"
}

func center(text string, width int) string {
	pad := width - len(text)
	if pad <= 0 {
		return text
	}
	left := pad / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", pad-left)
}
