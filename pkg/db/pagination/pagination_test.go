package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	token := CursorFor("42", at)
	require.NotEmpty(t, token)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "42", cursor.ID)
	assert.Equal(t, at.Format(time.RFC3339Nano), cursor.CreatedAt)
}

func TestBuildCursorPageInfoTrimsExtraRow(t *testing.T) {
	a, b, c := 1, 2, 3
	rows := []*int{&a, &b, &c}

	page, info := BuildCursorPageInfo(rows, 2, func(v *int) string { return "tok" })
	assert.Len(t, page, 2)
	assert.True(t, info.HasMore)
	assert.Equal(t, "tok", info.NextPageToken)

	page, info = BuildCursorPageInfo(rows, 5, func(v *int) string { return "tok" })
	assert.Len(t, page, 3)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)
}

func TestSizeClamps(t *testing.T) {
	assert.Equal(t, DefaultPageSize, Pagination{}.Size())
	assert.Equal(t, MaxPageSize, Pagination{PageSize: 10_000}.Size())
	assert.Equal(t, 10, Pagination{PageSize: 10}.Size())
}
