package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  Tag
		isErr bool
	}{
		{name: "simple", raw: "brand:acme", want: Tag{Group: "brand", Value: "acme"}},
		{name: "value keeps extra separators", raw: "category:food:frozen", want: Tag{Group: "category", Value: "food:frozen"}},
		{name: "empty value allowed", raw: "brand:", want: Tag{Group: "brand", Value: ""}},
		{name: "no separator", raw: "brand", isErr: true},
		{name: "empty group", raw: ":acme", isErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.isErr {
				require.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, raw := range []string{"brand:acme", "category:food:frozen", "principal:p-001"} {
		parsed, err := Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, parsed.String())
	}
}

func TestEquality(t *testing.T) {
	a, err := Parse("brand:acme")
	require.NoError(t, err)
	b, err := Parse("brand:acme")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, Tag{Group: "brand", Value: "other"})
}
