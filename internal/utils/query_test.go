package utils

import (
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueryList(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"missing", "", nil},
		{"single", "type=a", []string{"a"}},
		{"comma separated", "type=a,%20b", []string{"a", "b"}},
		{"repeated", "type=a&type=%20b", []string{"a", "b"}},
		{"repeated and comma separated", "type=a,b&type=c", []string{"a", "b", "c"}},
		{"blanks dropped", "type=a,,%20&type=", []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ParseQueryList(q, "type"))
		})
	}
}

func TestParseUUIDList(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	q := url.Values{"type": {a.String() + "," + b.String()}}
	ids, err := ParseUUIDList(q, "type")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	ids, err = ParseUUIDList(url.Values{}, "type")
	require.NoError(t, err)
	assert.Nil(t, ids)

	_, err = ParseUUIDList(url.Values{"type": {a.String(), "bakery"}}, "type")
	assert.EqualError(t, err, `invalid type "bakery"`)
}
