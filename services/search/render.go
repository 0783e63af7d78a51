package search

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/24kshah/nemhem-ai/internal/redact"
)

const (
	webHeading     = "### 🌐 Web Search Results"
	redditHeading  = "### 📥 Reddit Links"
	youtubeHeading = "### 🎥 YouTube Links with Thumbnails"

	// NoWebResults is rendered when Exa returns nothing
	NoWebResults = "⚠️ No results found from web search."

	warningMarker = "⚠️"
)

var youtubeIDPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11}).*`)

// RenderWeb formats Exa results as a markdown block
func RenderWeb(results []WebResult) string {
	if len(results) == 0 {
		return NoWebResults
	}

	var b strings.Builder
	for _, r := range results {
		title := r.Title
		if title == "" {
			title = "Untitled"
		}
		snippet := r.Text
		if snippet == "" {
			snippet = r.Snippet
		}
		if snippet == "" {
			snippet = "No snippet available"
		}
		fmt.Fprintf(&b, "[🔹 **%s**](%s)\n\n%s\n\n", title, r.URL, snippet)
	}
	return webHeading + "\n\n" + strings.TrimSpace(b.String())
}

// RenderReddit formats Reddit links as a markdown list
func RenderReddit(results []LinkResult) string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("- [%s](%s)", r.URL, r.URL))
	}
	return redditHeading + "\n\n" + strings.Join(lines, "\n")
}

// RenderYouTube formats YouTube links with their thumbnails. Links without a
// recognizable video id are skipped.
func RenderYouTube(results []LinkResult) string {
	var b strings.Builder
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		id, ok := YouTubeID(r.URL)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n<img src=\"%s\" width=\"320\"><br>\n🔗 [Watch Video](%s)  \n<br><br>\n", ThumbnailURL(id), r.URL)
	}
	return youtubeHeading + "\n\n" + b.String()
}

// YouTubeID extracts the 11 character video id from a watch or share URL
func YouTubeID(url string) (string, bool) {
	m := youtubeIDPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ThumbnailURL returns the high quality thumbnail for a video id
func ThumbnailURL(id string) string {
	return "https://img.youtube.com/vi/" + id + "/hqdefault.jpg"
}

// renderFailure formats a search error the way a result block would appear.
// The block is sent on to an LLM, so key formats are scrubbed.
func renderFailure(label string, err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("%s %s search failed: %d - %s", warningMarker, label, statusErr.StatusCode, redact.Secrets(statusErr.Body))
	}
	return fmt.Sprintf("%s %s search error: %s", warningMarker, label, redact.Secrets(err.Error()))
}
