package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokmz/commentvars/pkg/dictionary"
	"github.com/tokmz/commentvars/pkg/resolver"
)

func TestOverlayMissingKeys(t *testing.T) {
	en := dictionary.New().Set("hello", "Hi.")
	fr := dictionary.New()

	o := ResolveWithOptions(
		WithVariant("en", en),
		WithVariant("fr", fr),
		WithReference("en", en),
	)

	require.False(t, o.OK())
	assert.Equal(t, resolver.StageFailed, o.Stage)
	assert.Equal(t, resolver.StageOverlaid, o.FailedAt)
	assert.ErrorIs(t, o.Err(), ErrKeyMismatch)

	m := o.Mismatches["fr"]
	assert.Equal(t, []resolver.Key{"HELLO"}, m.Missing)
	assert.Empty(t, m.Extra)
	assert.False(t, m.Tolerated)

	_, ok := o.Tables("en")
	assert.False(t, ok)
}

func TestOverlayAllowIncomplete(t *testing.T) {
	en := dictionary.New().Set("hello", "Hi.")
	fr := dictionary.New()

	o := ResolveWithOptions(
		WithVariant("en", en),
		WithVariant("fr", fr),
		WithReference("en", en),
		WithAllowIncomplete(true),
	)

	require.True(t, o.OK(), "unexpected issues: %v", o.Issues)
	require.Len(t, o.Issues.Warnings(), 1)
	assert.ErrorIs(t, o.Issues.Warnings()[0], ErrKeyMismatch)
	assert.True(t, o.Mismatches["fr"].Tolerated)

	frTables, ok := o.Tables("fr")
	require.True(t, ok)
	assert.Empty(t, frTables.Flattened)

	enTables, ok := o.Tables("en")
	require.True(t, ok)
	assert.Equal(t, "Hi.", enTables.Flattened["EN#HELLO"])
}

func TestOverlayPerVariantAllowIncomplete(t *testing.T) {
	en := dictionary.New().Set("hello", "Hi.").Set("bye", "Bye.")
	fr := dictionary.New().Set("hello", "Salut.").Set("extra", "En plus.")

	o := ResolveWithOptions(
		WithVariants(
			Variant{Name: "en", Data: en},
			Variant{Name: "fr", Data: fr, AllowIncomplete: true},
		),
		WithReference("en", en),
	)

	require.True(t, o.OK(), "unexpected issues: %v", o.Issues)
	m := o.Mismatches["fr"]
	assert.Equal(t, []resolver.Key{"BYE"}, m.Missing)
	assert.Equal(t, []resolver.Key{"EXTRA"}, m.Extra)
}

func TestOverlayMatchingVariants(t *testing.T) {
	en := dictionary.New().Set("hello", "Hi.").Set("greet", "HELLO")
	fr := dictionary.New().Set("hello", "Salut.").Set("greet", "hello")

	o := ResolveWithOptions(
		WithVariant("en", en),
		WithVariant("fr", fr),
		WithReference("en", en),
		WithActive("fr"),
	)

	require.True(t, o.OK(), "unexpected issues: %v", o.Issues)
	assert.Empty(t, o.Mismatches)
	assert.Empty(t, o.Issues)

	view, ok := o.ActiveView()
	require.True(t, ok)
	assert.Equal(t, "Salut.", view.Flattened["HELLO"])
	assert.Equal(t, resolver.AliasTable{"GREET": "HELLO"}, view.Aliases)
	assert.Equal(t, resolver.Key("HELLO"), view.Reversed["Salut."])
	assert.Equal(t, "hello", view.Sources["HELLO"])
	assert.Empty(t, view.Namespace)
}

func TestOverlayReferenceIdentity(t *testing.T) {
	en := dictionary.New().Set("hello", "Hi.")
	copied := dictionary.New().Set("hello", "Hi.")

	tests := []struct {
		name string
		data *dictionary.Dictionary
	}{
		{"structural copy", copied},
		{"missing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := ResolveWithOptions(
				WithVariant("en", en),
				WithReference("en", tt.data),
			)
			require.False(t, o.OK())
			assert.Equal(t, resolver.StageFlattened, o.FailedAt)
			assert.ErrorIs(t, o.Err(), ErrReferenceIdentity)
			assert.Empty(t, o.Results)
		})
	}
}

func TestOverlayConfigErrors(t *testing.T) {
	en := dictionary.New().Set("hello", "Hi.")

	t.Run("no variants", func(t *testing.T) {
		assert.ErrorIs(t, Resolve(nil).Err(), ErrNoVariants)
	})

	t.Run("unknown reference", func(t *testing.T) {
		o := ResolveWithOptions(WithVariant("en", en), WithReference("de", en))
		assert.ErrorIs(t, o.Err(), ErrUnknownVariant)
	})

	t.Run("unknown active", func(t *testing.T) {
		o := ResolveWithOptions(WithVariant("en", en), WithReference("en", en), WithActive("de"))
		assert.ErrorIs(t, o.Err(), ErrUnknownVariant)
	})

	t.Run("duplicate namespace", func(t *testing.T) {
		o := ResolveWithOptions(WithVariant("en", en), WithVariant("EN", en), WithReference("en", en))
		assert.ErrorIs(t, o.Err(), ErrDuplicateVariant)
	})
}

func TestOverlayVariantFailure(t *testing.T) {
	en := dictionary.New().Set("hello", "Hi.")
	fr := dictionary.New().Set("hello", "Salut.").Set("bonjour", "Salut.")

	o := ResolveWithOptions(
		WithVariant("en", en),
		WithVariant("fr", fr),
		WithReference("en", en),
	)
	require.False(t, o.OK())
	assert.Equal(t, resolver.StageClassified, o.FailedAt)
	assert.ErrorIs(t, o.Err(), resolver.ErrDuplicateValue)
	assert.True(t, o.Results["en"].OK())
	assert.False(t, o.Results["fr"].OK())
}

func TestOverlayLabels(t *testing.T) {
	en := dictionary.New().Set("hello", "Hi.")
	custom := dictionary.New().Set("hello", "Hey.")

	o := ResolveWithOptions(
		WithVariants(
			Variant{Name: "en", Data: en},
			Variant{Name: "default", Label: "Fallback", Data: custom},
		),
		WithReference("en", en),
	)

	require.True(t, o.OK(), "unexpected issues: %v", o.Issues)
	assert.Equal(t, "English", o.Label("en"))
	assert.Equal(t, "Fallback", o.Label("default"))
	assert.Equal(t, "missing", o.Label("missing"))
	require.Len(t, o.Issues.Warnings(), 1)
	assert.ErrorIs(t, o.Issues.Warnings()[0], ErrInvalidVariantTag)
}

func TestOverlayParallel(t *testing.T) {
	names := []string{"en", "fr", "de", "es", "it", "pt"}
	var variants []Variant
	for _, name := range names {
		d := dictionary.New().
			Set("hello", "Hello "+name).
			Set("bye", "Bye "+name).
			Set("both", "$COMMENT#HELLO $COMMENT#BYE")
		variants = append(variants, Variant{Name: name, Data: d})
	}

	o := ResolveWithOptions(
		WithVariants(variants...),
		WithReference("en", variants[0].Data),
		WithParallel(3),
		WithResolverOptions(resolver.WithCompositionOnly("bye")),
	)

	require.True(t, o.OK(), "unexpected issues: %v", o.Issues)
	for _, name := range names {
		tables, ok := o.Tables(name)
		require.True(t, ok, name)
		v, ok := tables.Lookup(resolver.Key(tables.Namespace + "#BOTH"))
		require.True(t, ok)
		assert.Equal(t, "Hello "+name+" Bye "+name, v)
		assert.Len(t, tables.CompositionOnly, 1)
	}
	assert.Equal(t, "en", o.Active)
}
