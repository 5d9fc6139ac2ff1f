package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoshigumi/cast-console-api/internal/models"
)

func diaryPost(author string, date time.Time) models.DiaryPost {
	return models.DiaryPost{Author: author, Date: date}
}

func TestCountPosts(t *testing.T) {
	windows, err := ResolveWindows("2025-06")
	require.NoError(t, err)

	posts := []models.DiaryPost{
		diaryPost("みゆ", time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)),
		diaryPost(" みゆ ", time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)),
		diaryPost("みゆき", time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)),
		diaryPost("みゆ", time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)),
	}

	assert.Equal(t, 2, CountPosts(posts, "みゆ", windows.Current))
	assert.Equal(t, 1, CountPosts(posts, "みゆき", windows.Current))
	assert.Equal(t, 0, CountPosts(posts, "", windows.Current))
}

func TestPostsPerDay(t *testing.T) {
	windows, err := ResolveWindows("2025-06")
	require.NoError(t, err)

	posts := []models.DiaryPost{
		diaryPost("りん", time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)),
		diaryPost("りん", time.Date(2025, 6, 2, 20, 0, 0, 0, time.UTC)),
		diaryPost("りん", time.Date(2025, 6, 8, 11, 0, 0, 0, time.UTC)),
		diaryPost("別人", time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)),
	}

	counts := PostsPerDay(posts, "りん", windows.Current)
	assert.Equal(t, map[string]int{"2025-06-02": 2, "2025-06-08": 1}, counts)
}

func TestUnderPosting(t *testing.T) {
	assert.True(t, UnderPosting(10, 5, 2), "exactly at the expected volume still flags")
	assert.False(t, UnderPosting(11, 5, 2))
	assert.True(t, UnderPosting(0, 0, 2), "no worked days and no posts flags")
}
