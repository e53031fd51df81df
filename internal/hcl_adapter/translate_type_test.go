package hcl_adapter

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestTypeExprToCtyType(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		want    cty.Type
		wantErr string
	}{
		{name: "primitive", src: "string", want: cty.String},
		{name: "any", src: "any", want: cty.DynamicPseudoType},
		{name: "nested collections", src: "map(list(number))", want: cty.Map(cty.List(cty.Number))},
		{name: "set of bool", src: "set(bool)", want: cty.Set(cty.Bool)},
		{
			name: "object",
			src:  `object({ name = string, tags = list(string) })`,
			want: cty.Object(map[string]cty.Type{"name": cty.String, "tags": cty.List(cty.String)}),
		},
		{name: "tuple", src: "tuple([string, number])", want: cty.Tuple([]cty.Type{cty.String, cty.Number})},
		{name: "unknown keyword", src: "text", wantErr: "text"},
		{name: "bare constructor", src: "list", wantErr: "list"},
		{name: "not a type", src: `"string"`, wantErr: "keyword"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			expr, diags := hclsyntax.ParseExpression([]byte(tc.src), "t.hcl", hcl.InitialPos)
			require.False(t, diags.HasErrors(), diags.Error())

			// --- Act ---
			got, err := typeExprToCtyType(context.Background(), expr)

			// --- Assert ---
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				assert.Equal(t, cty.DynamicPseudoType, got)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.want.Equals(got), "want %#v, got %#v", tc.want, got)
		})
	}

	t.Run("omitted means any", func(t *testing.T) {
		got, err := typeExprToCtyType(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, cty.DynamicPseudoType, got)
	})
}
