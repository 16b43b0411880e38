package view

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCount(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{25, 0, 1},
		{5, math.MaxInt, 1},
		{math.MaxInt, math.MaxInt, 1},
		{math.MaxInt, 1, math.MaxInt},
		{math.MaxInt, 2, math.MaxInt/2 + 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.total, tt.size), func(t *testing.T) {
			assert.Equal(t, tt.want, PageCount(tt.total, tt.size))
		})
	}
}

func TestQueryOffset(t *testing.T) {
	assert.Equal(t, 0, Query{Page: 1, PageSize: 10}.Offset())
	assert.Equal(t, 20, Query{Page: 3, PageSize: 10}.Offset())
	assert.Equal(t, 0, Query{Page: 0, PageSize: 10}.Offset())
	assert.Equal(t, math.MaxInt, Query{Page: math.MaxInt / 5, PageSize: 10}.Offset())
	assert.Equal(t, math.MaxInt, Query{Page: 3, PageSize: math.MaxInt}.Offset())
}

func TestParseDirectionAndFlip(t *testing.T) {
	assert.Equal(t, Asc, ParseDirection(" ASC "))
	assert.Equal(t, Desc, ParseDirection("descending"))
	assert.Equal(t, Unspecified, ParseDirection("sideways"))
	assert.Equal(t, Desc, Asc.Flip())
	assert.Equal(t, Asc, Desc.Flip())
	assert.Equal(t, Asc, Unspecified.Flip())
}

func TestErrorKinds(t *testing.T) {
	base := errors.New("connection refused")
	err := fmt.Errorf("load: %w", Wrap(KindTransport, "send", base))

	require.True(t, IsKind(err, KindTransport))
	assert.False(t, IsKind(err, KindMalformed))
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "transport send: connection refused")

	assert.Nil(t, Wrap(KindTransport, "send", nil))
	assert.Equal(t, "validation setPage: page 9 out of range", Errorf(KindValidation, "setPage", "page %d out of range", 9).Error())
}

func TestColumnLabel(t *testing.T) {
	assert.Equal(t, "Team First Name", NewColumn("team.first_name").Label())
	assert.Equal(t, "Id", NewColumn("id").Label())

	c := NewColumn("id")
	c.Title = "ID"
	assert.Equal(t, "ID", c.Label())
}
