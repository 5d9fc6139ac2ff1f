package analytics

import (
	"strings"

	"github.com/hoshigumi/cast-console-api/internal/models"
)

// noneBucket collects records whose category field is empty or unparseable.
const noneBucket = "(none)"

// CountPosts counts diary posts attributed to the named cast inside the
// window. Author names in the feed are free text, so attribution is an exact,
// whitespace-trimmed match against the roster name; unmatched posts are
// excluded.
func CountPosts(posts []models.DiaryPost, castName string, window MonthlyWindow) int {
	want := strings.TrimSpace(castName)
	if want == "" {
		return 0
	}
	count := 0
	for _, post := range posts {
		if strings.TrimSpace(post.Author) != want {
			continue
		}
		if window.Contains(post.Date) {
			count++
		}
	}
	return count
}

// PostsPerDay cross-tabulates attributed posts by calendar date for the
// diary-activity chart.
func PostsPerDay(posts []models.DiaryPost, castName string, window MonthlyWindow) map[string]int {
	want := strings.TrimSpace(castName)
	counts := make(map[string]int)
	for _, post := range posts {
		if strings.TrimSpace(post.Author) != want {
			continue
		}
		if window.Contains(post.Date) {
			counts[post.Date.Format("2006-01-02")]++
		}
	}
	return counts
}

// UnderPosting flags a cast whose diary output fell at or below the expected
// volume of multiplier posts per worked day.
func UnderPosting(postsThisWindow, workedDays, multiplier int) bool {
	return postsThisWindow <= workedDays*multiplier
}
