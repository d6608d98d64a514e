package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		path   []string
		key    Key
		source string
	}{
		{"nested", []string{"levelOne", "levelTwo", "levelThree"}, "LEVELONE#LEVELTWO#LEVELTHREE", "levelOne > levelTwo > levelThree"},
		{"whitespace", []string{"Level Three"}, "LEVEL_THREE", "Level Three"},
		{"whitespace run", []string{"level \t three"}, "LEVEL_THREE", "level \t three"},
		{"unicode", []string{"straße", "日本"}, "STRASSE#日本", "straße > 日本"},
		{"dash and digits", []string{"step-2"}, "STEP-2", "step-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, source := Normalize(tt.path)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.source, source)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	path := []string{"a b", "c"}
	k1, _ := Normalize(path)
	k2, _ := Normalize(path)
	assert.Equal(t, k1, k2)

	k3, _ := Normalize([]string{"a    b", "c"})
	assert.Equal(t, k1, k3)
	assert.True(t, IsValidKey(k1))
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "$COMMENT#A#B", Placeholder("A#B"))
	assert.Equal(t, "$COMMENT#GREET", Key("GREET").Placeholder())
}

func TestParsePlaceholders(t *testing.T) {
	assert.Equal(t, []Key{"A", "B#C"}, ParsePlaceholders("$COMMENT#A $COMMENT#B#C"))
	assert.Equal(t, []Key{"X_Y"}, ParsePlaceholders("see $COMMENT#X_Y."))
	assert.Empty(t, ParsePlaceholders("no placeholder here"))
	assert.Empty(t, ParsePlaceholders("$COMMENT#lower"))
}

func TestIsValidKey(t *testing.T) {
	tests := []struct {
		key   Key
		valid bool
	}{
		{"A#B", true},
		{"LEVEL_THREE", true},
		{"日本#ÉTÉ", true},
		{"a#b", false},
		{"A B", false},
		{"A$B", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, IsValidKey(tt.key), "key %q", tt.key)
	}
}

func TestNormalizeReference(t *testing.T) {
	assert.Equal(t, Key("GREET"), normalizeReference("greet"))
	assert.Equal(t, Key("GREET"), normalizeReference("$comment#greet"))
	assert.Equal(t, Key("EN#GREET"), normalizeReference("$COMMENT#EN#GREET"))
}

func TestStripNamespace(t *testing.T) {
	assert.Equal(t, Key("GREET"), StripNamespace("EN", "EN#GREET"))
	assert.Equal(t, Key("FR#GREET"), StripNamespace("EN", "FR#GREET"))
	assert.Equal(t, Key("GREET"), StripNamespace("", "GREET"))
}
