package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantee/storefront/internal/domain"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		name     string
		in       interface{}
		kind     RefKind
		raw      string
		position int
	}{
		{"store id", "64b7f0c2a1b2c3d4e5f60718", RefByID, "64b7f0c2a1b2c3d4e5f60718", 0},
		{"uppercase store id", "64B7F0C2A1B2C3D4E5F60718", RefByID, "64b7f0c2a1b2c3d4e5f60718", 0},
		{"numeric string", "3", RefByPosition, "3", 3},
		{"json number", float64(5), RefByPosition, "5", 5},
		{"int", 2, RefByPosition, "2", 2},
		{"zero is positional", "0", RefByPosition, "0", 0},
		{"digits with suffix is a name", "2abc", RefByName, "2abc", 0},
		{"padded digits is a name", " 2", RefByName, " 2", 0},
		{"fraction is a name", float64(1.5), RefByName, "1.5", 0},
		{"name", "Aloe", RefByName, "Aloe", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseRef(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, ref.Kind)
			assert.Equal(t, tt.raw, ref.Raw)
			assert.Equal(t, tt.position, ref.Position)
		})
	}
}

func TestParseRefRejectsEmpty(t *testing.T) {
	for _, in := range []interface{}{nil, "", "   ", map[string]interface{}{"id": 1}} {
		_, err := ParseRef(in)
		assert.ErrorIs(t, err, ErrInvalidRequest, "%v", in)
	}
}

func TestMatchNameCaseFolding(t *testing.T) {
	snapshot := []domain.Plant{
		{Name: "Monstera Deliciosa"},
		{Name: "Aloe Vera"},
		{Name: "BOSTON Fern"},
	}
	assert.Equal(t, 1, matchName(snapshot, "aloe"))
	assert.Equal(t, 1, matchName(snapshot, "ALOE VERA"))
	assert.Equal(t, 0, matchName(snapshot, "e"))
	assert.Equal(t, 2, matchName(snapshot, "boston fern"))
	assert.Equal(t, -1, matchName(snapshot, "cactus"))
}
