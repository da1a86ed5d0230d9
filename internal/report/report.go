// Package report renders a company's processed news as a Markdown digest.
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/yuin/goldmark"

	"github.com/Bhavik2205/news-sentiment/internal/api"
)

// maxTitleWidth caps the title column in display cells.
const maxTitleWidth = 60

// Markdown renders news as a heading, an aligned overview table and one section per article.
func Markdown(company string, news api.NewsResponse) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# News sentiment: %s\n\n", company)

	if news.AverageSentiment == nil {
		sb.WriteString("No valid articles could be processed\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "Average sentiment: **%s/5** across %d articles\n\n",
		strconv.FormatFloat(*news.AverageSentiment, 'f', -1, 64), len(news.Articles))

	rows := [][]string{{"#", "Title", "Score", "Label", "Audio"}}
	for i, a := range news.Articles {
		audio := "failed"
		if a.Audio != nil {
			audio = *a.Audio
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			escapeCell(runewidth.Truncate(a.Title, maxTitleWidth, "...")),
			strconv.Itoa(a.SentimentScore) + "/5",
			a.SentimentLabel,
			audio,
		})
	}
	for _, line := range table(rows) {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	for i, a := range news.Articles {
		fmt.Fprintf(&sb, "\n## %d. [%s](%s)\n\n", i+1, a.Title, a.Link)
		fmt.Fprintf(&sb, "%s\n\n", a.Summary)
		fmt.Fprintf(&sb, "Sentiment: %d/5 (%s)\n", a.SentimentScore, a.SentimentLabel)
	}

	return sb.String()
}

// HTML converts a Markdown digest to an HTML fragment.
func HTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to render digest: %w", err)
	}
	return buf.String(), nil
}

// table pads every column to its widest cell by display width, with a separator after the header.
func table(rows [][]string) []string {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] < 3 {
			widths[i] = 3
		}
	}

	lines := make([]string, 0, len(rows)+1)
	for r, row := range rows {
		lines = append(lines, line(row, widths))
		if r == 0 {
			sep := make([]string, len(widths))
			for i, w := range widths {
				sep[i] = strings.Repeat("-", w)
			}
			lines = append(lines, line(sep, widths))
		}
	}
	return lines
}

func line(cells []string, widths []int) string {
	var sb strings.Builder
	sb.WriteString("|")
	for i, cell := range cells {
		sb.WriteString(" ")
		sb.WriteString(runewidth.FillRight(cell, widths[i]))
		sb.WriteString(" |")
	}
	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
