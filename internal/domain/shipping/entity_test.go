package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	common "modaorganica/internal/domain/common"
)

func TestQuote_LocalZones(t *testing.T) {
	r := DefaultRules()

	for _, m := range []string{"Huehuetenango", "Chiantla", "chiantla", "  CHIANTLA  ", "huehuetenango\t", "Chiantlá", "Aldea Chiantla"} {
		q := r.Quote(m)
		assert.True(t, q.Local, m)
		assert.Equal(t, MethodLocalDelivery, q.Method, m)
		assert.True(t, q.Cost.Equal(r.Costs.Local), m)
		assert.False(t, q.RequiresCourier(), m)
	}
}

func TestQuote_National(t *testing.T) {
	r := DefaultRules()

	for _, m := range []string{"Mixco", "Guatemala", "Antigua Guatemala", "", "   ", "Chian"} {
		q := r.Quote(m)
		assert.False(t, q.Local, m)
		assert.Equal(t, MethodCourier, q.Method, m)
		assert.Equal(t, "Cargo Expreso", q.Provider)
		assert.True(t, q.Cost.Equal(common.MustParseMoney("35")), m)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "san jose pinula", Normalize("  San José Pinula "))
	assert.Equal(t, "peten", Normalize("PETÉN"))
	assert.Equal(t, "", Normalize("   "))
}

func TestTable_Replace(t *testing.T) {
	tbl := NewTable(DefaultRules())

	next := DefaultRules()
	next.Costs.Local = common.Zero
	require.NoError(t, tbl.Replace(next))
	assert.True(t, tbl.Rules().Costs.Local.IsZero())

	bad := DefaultRules()
	bad.Costs.National = common.MustParseMoney("-1")
	assert.ErrorIs(t, tbl.Replace(bad), ErrInvalidRules)
	assert.True(t, tbl.Rules().Costs.Local.IsZero())

	var nilTable *Table
	assert.True(t, DefaultRules().Costs.National.Equal(nilTable.Rules().Costs.National))
}
