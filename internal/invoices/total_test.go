package invoices

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clientdesk/clientdesk-backend/internal/money"
)

func TestLineItemAmount(t *testing.T) {
	li := LineItem{Description: "Design", Qty: 2, UnitPriceCents: 10000}
	assert.Equal(t, money.Cents(20000), li.AmountCents())

	free := LineItem{Description: "Goodwill discount", Qty: 3, UnitPriceCents: 0}
	assert.Equal(t, money.Cents(0), free.AmountCents())
}

func TestComputeTotal(t *testing.T) {
	t.Run("sums qty times unit price exactly", func(t *testing.T) {
		items := []LineItem{
			{Description: "Design", Qty: 2, UnitPriceCents: 10000},
			{Description: "Hosting", Qty: 1, UnitPriceCents: 5000},
		}
		assert.Equal(t, money.Cents(25000), ComputeTotal(items))
	})

	t.Run("empty list totals zero", func(t *testing.T) {
		assert.Equal(t, money.Cents(0), ComputeTotal(nil))
		assert.Equal(t, money.Cents(0), ComputeTotal([]LineItem{}))
	})

	t.Run("no float drift on odd cent amounts", func(t *testing.T) {
		items := []LineItem{
			{Description: "Consulting", Qty: 3, UnitPriceCents: 3333},
			{Description: "Review", Qty: 7, UnitPriceCents: 101},
		}
		assert.Equal(t, money.Cents(3*3333+7*101), ComputeTotal(items))
	})

	t.Run("large quantities stay exact", func(t *testing.T) {
		items := []LineItem{{Description: "API calls", Qty: 1_000_000, UnitPriceCents: 3}}
		assert.Equal(t, money.Cents(3_000_000), ComputeTotal(items))
	})
}
