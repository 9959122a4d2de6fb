package site

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteMarkdown writes the sections as a markdown digest suitable for
// pasting into a README or gist. It predates the HTML page and is kept as an
// alternate output format.
func WriteMarkdown(w io.Writer, sections []Section) error {
	bw := bufio.NewWriter(w)
	for _, section := range sections {
		fmt.Fprintf(bw, "# %s\n%s\n\n", section.Category.Title, section.Category.Description)
		for _, review := range section.Reviews {
			writeMarkdownReview(bw, review)
			bw.WriteString("\n\n")
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

func writeMarkdownReview(bw *bufio.Writer, review Review) {
	bw.WriteString("*")
	if review.Link != "" {
		fmt.Fprintf(bw, "[%s](%s)", review.Title, review.Link)
	} else {
		fmt.Fprintf(bw, "**%s**", review.Title)
	}
	if review.YearPlayed != "" {
		fmt.Fprintf(bw, " - joué en %s ", review.YearPlayed)
	}
	if review.HeartCount > 0 {
		bw.WriteString(strings.Repeat(":heart:", int(review.HeartCount)))
	}
	if review.Rating != nil {
		fmt.Fprintf(bw, "**%d/20**", *review.Rating)
	}
	bw.WriteString("\n")
	if review.DateReleased != "" {
		fmt.Fprintf(bw, "*Sorti en %s*\n", review.DateReleased)
	}
	if len(review.Genres) > 0 {
		fmt.Fprintf(bw, "*%s*\n", strings.Join(review.Genres, ", "))
	}
	fmt.Fprintf(bw, ":information_source: %s\n", review.Description)
	if review.Pros != "" {
		fmt.Fprintf(bw, ":heavy_check_mark: %s\n", review.Pros)
	}
	if review.Cons != "" {
		fmt.Fprintf(bw, ":x: %s\n", review.Cons)
	}
}
