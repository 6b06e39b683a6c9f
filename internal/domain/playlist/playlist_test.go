package playlist

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeItem(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Item
		ok       bool
	}{
		{name: "plain url", raw: "http://a", expected: "http://a", ok: true},
		{name: "surrounding whitespace", raw: "  http://a \t", expected: "http://a", ok: true},
		{name: "angle brackets", raw: "<http://a>", expected: "http://a", ok: true},
		{name: "angle brackets with whitespace", raw: "  < http://a >  ", expected: "http://a", ok: true},
		{name: "only opening bracket", raw: "<http://a", expected: "<http://a", ok: true},
		{name: "non-url text is accepted", raw: "ytsearch:some song", expected: "ytsearch:some song", ok: true},
		{name: "empty", raw: "", ok: false},
		{name: "whitespace only", raw: "   ", ok: false},
		{name: "empty brackets", raw: "<>", ok: false},
		{name: "embedded line break", raw: "http://a\nhttp://b", ok: false},
		{name: "hash comment", raw: "#anchor", ok: false},
		{name: "slash comment", raw: "// note", ok: false},
		{name: "bracketed shuffle directive", raw: "<#shuffle>", ok: false},
		{name: "hash inside url", raw: "http://a/#t=30", expected: "http://a/#t=30", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := NormalizeItem(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, item)
		})
	}
}

func TestSplitItems(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []Item
	}{
		{
			name:     "single url",
			raw:      "http://a",
			expected: []Item{"http://a"},
		},
		{
			name:     "pipe delimited with brackets",
			raw:      "<http://a> | http://b |<http://c>",
			expected: []Item{"http://a", "http://b", "http://c"},
		},
		{
			name:     "empty segments dropped",
			raw:      "http://a || |http://b|",
			expected: []Item{"http://a", "http://b"},
		},
		{
			name:     "duplicates kept",
			raw:      "http://a|http://a",
			expected: []Item{"http://a", "http://a"},
		},
		{
			name:     "nothing usable",
			raw:      " | ",
			expected: []Item{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitItems(tt.raw))
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
		wantErr  bool
	}{
		{name: "simple", raw: "chill", expected: "chill"},
		{name: "whitespace becomes underscore", raw: "road  trip\tmix", expected: "road_trip_mix"},
		{name: "surrounding whitespace trimmed", raw: "  chill  ", expected: "chill"},
		{name: "case preserved", raw: "Chill", expected: "Chill"},
		{name: "empty", raw: "   ", wantErr: true},
		{name: "parent directory", raw: "..", wantErr: true},
		{name: "current directory", raw: ".", wantErr: true},
		{name: "hidden file", raw: ".secret", wantErr: true},
		{name: "slash", raw: "../etc/passwd", wantErr: true},
		{name: "backslash", raw: "a\\b", wantErr: true},
		{name: "drive separator", raw: "C:list", wantErr: true},
		{name: "nul byte", raw: "a\x00b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, err := NormalizeName(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidName))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, name)
		})
	}
}

func TestParse(t *testing.T) {
	content := strings.Join([]string{
		"#shuffle",
		"",
		"http://a",
		"  <http://b>  ",
		"# a comment",
		"// another comment",
		"<>",
		"http://a",
		"\xff\xfe",
		"http://c",
	}, "\r\n")

	p, err := Parse("mix", strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, "mix", p.Name)
	assert.True(t, p.Shuffle)
	assert.Equal(t, []Item{"http://a", "http://b", "http://a", "http://c"}, p.Items)
	assert.Equal(t, 4, p.Len())
	assert.Equal(t, []string{"http://a", "http://b", "http://a", "http://c"}, p.URLs())
}

func TestParse_ShuffleDirectiveVariants(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		shuffle bool
	}{
		{name: "hash", line: "#shuffle", shuffle: true},
		{name: "hash upper case", line: "#SHUFFLE", shuffle: true},
		{name: "slashes with spaces", line: "// shuffle", shuffle: true},
		{name: "other comment", line: "# shuffled by bob", shuffle: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse("x", strings.NewReader(tt.line+"\nhttp://a\n"))
			require.NoError(t, err)
			assert.Equal(t, tt.shuffle, p.Shuffle)
			assert.Equal(t, []Item{"http://a"}, p.Items)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	p, err := Parse("empty", strings.NewReader(""))
	require.NoError(t, err)
	assert.NotNil(t, p.Items)
	assert.Equal(t, 0, p.Len())
	assert.False(t, p.Shuffle)
}

func TestSerialize(t *testing.T) {
	assert.Equal(t, "", Serialize(nil, false))
	assert.Equal(t, "http://a\r\nhttp://b\r\n", Serialize([]Item{"http://a", "http://b"}, false))
	assert.Equal(t, "#shuffle\r\nhttp://a\r\n", Serialize([]Item{"http://a"}, true))
}

func TestPlaylist_ContentRoundTrip(t *testing.T) {
	original := &Playlist{
		Name:    "mix",
		Items:   []Item{"http://a", "http://b"},
		Shuffle: true,
	}

	parsed, err := Parse("mix", strings.NewReader(original.Content()))
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}
