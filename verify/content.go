package verify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxContentBytes bounds how much of a documentation page is read for the
// relevance pass.
const maxContentBytes = 512 << 10

// maxHeadings caps how many section headings are passed to the judge.
const maxHeadings = 8

// Judgment is the question the content relevance pass puts to the judge:
// does this page specifically document the named method for the named tool?
type Judgment struct {
	ToolName   string
	MethodName string
	MethodType string
	URL        string
	Title      string
	Headings   []string
}

// RelevanceJudge scores a Judgment in [0,1]. The oracle gateway implements
// this; tests inject fakes.
type RelevanceJudge interface {
	JudgeRelevance(ctx context.Context, j Judgment) (float64, error)
}

// fetchSummary downloads a page and reduces it to the title and leading
// headings, which is all the judge needs to assess relevance.
func (v *Verifier) fetchSummary(ctx context.Context, rawURL string) (string, []string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", nil, fmt.Errorf("verify: build content request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := v.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("verify: fetch content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", nil, fmt.Errorf("verify: fetch content: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxContentBytes))
	if err != nil {
		return "", nil, fmt.Errorf("verify: parse content: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	var headings []string
	doc.Find("h1, h2").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if text != "" {
			headings = append(headings, text)
		}
		return len(headings) < maxHeadings
	})

	return title, headings, nil
}
