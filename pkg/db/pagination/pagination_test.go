package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "42", CreatedAt: "2024-05-01T12:00:00Z"})
	require.NoError(t, err)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "42", cursor.ID)
	assert.Equal(t, "2024-05-01T12:00:00Z", cursor.CreatedAt)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("not base64!!!")
	assert.Error(t, err)
}

type row struct{ id string }

func TestBuildCursorPageInfoHasMore(t *testing.T) {
	rows := []*row{{"a"}, {"b"}, {"c"}}

	info := BuildCursorPageInfo(rows, 2, func(r *row) string { return r.id })
	require.NotNil(t, info)
	assert.True(t, info.HasMore)
	assert.Equal(t, "b", info.NextPageToken)
}

func TestBuildCursorPageInfoLastPage(t *testing.T) {
	rows := []*row{{"a"}, {"b"}}

	info := BuildCursorPageInfo(rows, 2, func(r *row) string { return r.id })
	require.NotNil(t, info)
	assert.False(t, info.HasMore)
	assert.Equal(t, "b", info.NextPageToken)
}

func TestBuildCursorPageInfoEmpty(t *testing.T) {
	info := BuildCursorPageInfo(nil, 2, func(r *row) string { return r.id })
	require.NotNil(t, info)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)
}
