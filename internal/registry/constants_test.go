package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/declrt/internal/value"
	"github.com/zclconf/go-cty/cty"
)

func TestConstants_Define(t *testing.T) {
	testCases := []struct {
		name        string
		setup       func(c *Constants)
		defName     string
		defInsens   bool
		wantDefined bool
	}{
		{
			name:        "fresh case-sensitive name",
			defName:     "FOO",
			wantDefined: true,
		},
		{
			name:    "identical case-sensitive name",
			setup:   func(c *Constants) { c.Define("FOO", cty.NumberIntVal(1), false) },
			defName: "FOO",
		},
		{
			name:        "different case of a case-sensitive name",
			setup:       func(c *Constants) { c.Define("FOO", cty.NumberIntVal(1), false) },
			defName:     "foo",
			wantDefined: true,
		},
		{
			name:    "case-sensitive name over case-insensitive binding",
			setup:   func(c *Constants) { c.Define("Bar", cty.NumberIntVal(1), true) },
			defName: "BAR",
		},
		{
			name:      "case-insensitive name over case-sensitive binding",
			setup:     func(c *Constants) { c.Define("baz", cty.NumberIntVal(1), false) },
			defName:   "BAZ",
			defInsens: true,
		},
		{
			name:    "empty name",
			defName: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewConstants()
			if tc.setup != nil {
				tc.setup(c)
			}
			before := c.Len()
			got := c.Define(tc.defName, cty.StringVal("v"), tc.defInsens)
			assert.Equal(t, tc.wantDefined, got)
			if tc.wantDefined {
				assert.Equal(t, before+1, c.Len())
			} else {
				assert.Equal(t, before, c.Len())
			}
		})
	}
}

func TestConstants_DefineRejectsUnset(t *testing.T) {
	c := NewConstants()
	assert.False(t, c.Define("X", value.Unset, false))
	assert.False(t, c.IsDefined("X"))
}

func TestConstants_Lookup(t *testing.T) {
	c := NewConstants()
	require.True(t, c.Define("Exact", cty.NumberIntVal(1), false))
	require.True(t, c.Define("Loose", cty.NumberIntVal(2), true))

	assert.True(t, c.Get("Exact").RawEquals(cty.NumberIntVal(1)))
	assert.True(t, value.IsUnset(c.Get("EXACT")))
	assert.True(t, c.Get("LOOSE").RawEquals(cty.NumberIntVal(2)))
	assert.True(t, c.IsDefined("loose"))
	assert.False(t, c.IsDefined("missing"))

	entry, ok := c.Lookup("lOoSe")
	require.True(t, ok)
	assert.Equal(t, "Loose", entry.Name)
	assert.True(t, entry.CaseInsensitive)
}

func TestConstants_AllSnapshot(t *testing.T) {
	c := NewConstants()
	c.Define("A", cty.NumberIntVal(1), false)
	c.Define("B", cty.NumberIntVal(2), false)

	seq := c.All()
	c.Define("C", cty.NumberIntVal(3), false)

	var names []string
	for name := range seq {
		names = append(names, name)
	}
	assert.Equal(t, []string{"A", "B"}, names)

	names = nil
	for name := range c.All() {
		names = append(names, name)
		break
	}
	assert.Equal(t, []string{"A"}, names)
}

func TestConstants_Conflicts(t *testing.T) {
	c := NewConstants()
	c.Define("Strict", cty.True, false)
	c.Define("Loose", cty.True, true)

	assert.True(t, c.Conflicts("Strict", false))
	assert.False(t, c.Conflicts("STRICT", false))
	assert.True(t, c.Conflicts("STRICT", true))
	assert.True(t, c.Conflicts("LOOSE", false))
	assert.False(t, c.Conflicts("other", true))
	assert.Equal(t, 2, c.Len(), "Conflicts must not define anything")
}
