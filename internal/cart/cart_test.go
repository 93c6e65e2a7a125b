package cart

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestCart() *Cart {
	return New(WithClock(func() time.Time { return fixedNow }))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func product(id, store, price string) ProductSnapshot {
	return ProductSnapshot{ID: id, StoreID: store, Name: "Product " + id, Price: dec(price)}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func assertTotalsConsistent(t *testing.T, c *Cart) {
	t.Helper()
	sum := decimal.Zero
	qty := 0
	for _, l := range c.Lines() {
		sum = sum.Add(l.Subtotal)
		qty += l.Quantity
		assert.True(t, l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))).Equal(l.Subtotal), "line %s subtotal", l.Product.ID)
		assert.GreaterOrEqual(t, l.Quantity, 1)
	}
	assert.Equal(t, qty, c.ItemCount())
	assert.True(t, sum.Equal(c.Subtotal()))
	assert.True(t, c.Subtotal().Mul(c.TaxRate()).Equal(c.TaxAmount()))
	assert.True(t, c.Subtotal().Add(c.TaxAmount()).Equal(c.Total()))
}

func TestNewCartIsEmpty(t *testing.T) {
	c := newTestCart()

	assert.True(t, c.Empty())
	assert.Empty(t, c.BoundStore())
	assert.Equal(t, 0, c.ItemCount())
	assertDecimal(t, "0", c.Subtotal())
	assertDecimal(t, "0", c.TaxAmount())
	assertDecimal(t, "0", c.Total())
	assert.Equal(t, fixedNow, c.LastModified())
}

func TestAddLineScenario(t *testing.T) {
	c := newTestCart()
	require.Equal(t, Updated, c.SetTaxRate(dec("0.08")))

	out := c.AddLine(product("A", "s1", "2.99"), 3)
	require.Equal(t, Added, out)

	assert.Equal(t, "s1", c.BoundStore())
	assert.Equal(t, 3, c.ItemCount())
	assertDecimal(t, "8.97", c.Subtotal())
	assertDecimal(t, "0.7176", c.TaxAmount())
	assertDecimal(t, "9.6876", c.Total())
	assertTotalsConsistent(t, c)

	require.Equal(t, Removed, c.SetLineQuantity("A", 0))
	assert.True(t, c.Empty())
	assert.Equal(t, 0, c.ItemCount())
	assertDecimal(t, "0", c.Subtotal())
	assertDecimal(t, "0", c.TaxAmount())
	assertDecimal(t, "0", c.Total())
	assert.Equal(t, "s1", c.BoundStore())
}

func TestAddLineMergesQuantities(t *testing.T) {
	c := newTestCart()
	p := product("A", "s1", "1.10")

	quantities := []int{1, 2, 5, 3}
	want := 0
	for i, q := range quantities {
		out := c.AddLine(p, q)
		if i == 0 {
			assert.Equal(t, Added, out)
		} else {
			assert.Equal(t, Updated, out)
		}
		want += q
	}

	require.Len(t, c.Lines(), 1)
	assert.Equal(t, want, c.ItemCount())
	line, ok := c.Line("A")
	require.True(t, ok)
	assert.Equal(t, want, line.Quantity)
	assert.True(t, p.Price.Mul(decimal.NewFromInt(int64(want))).Equal(line.Subtotal))
	assertTotalsConsistent(t, c)
}

func TestAddLineRepricesFromIncomingSnapshot(t *testing.T) {
	c := newTestCart()
	c.AddLine(product("A", "s1", "2.00"), 2)
	c.AddLine(product("A", "s1", "2.50"), 1)

	line, ok := c.Line("A")
	require.True(t, ok)
	assert.Equal(t, 3, line.Quantity)
	assertDecimal(t, "2.50", line.Product.Price)
	assertDecimal(t, "7.50", line.Subtotal)
}

func TestAddLineDefaultsQuantityToOne(t *testing.T) {
	for _, q := range []int{0, -4} {
		c := newTestCart()
		require.Equal(t, Added, c.AddLine(product("A", "s1", "3"), q))
		assert.Equal(t, 1, c.ItemCount())
	}
}

func TestAddLineKeepsInsertionOrder(t *testing.T) {
	c := newTestCart()
	c.AddLine(product("C", "s1", "1"), 1)
	c.AddLine(product("A", "s1", "1"), 1)
	c.AddLine(product("B", "s1", "1"), 1)
	c.AddLine(product("A", "s1", "1"), 1)

	var ids []string
	for _, l := range c.Lines() {
		ids = append(ids, l.Product.ID)
	}
	assert.Equal(t, []string{"C", "A", "B"}, ids)
}

func TestAddLineWrongStoreIsNoop(t *testing.T) {
	c := newTestCart()
	require.Equal(t, Updated, c.SetBoundStore("s1"))
	c.SetTaxRate(dec("0.1"))
	c.AddLine(product("A", "s1", "4.25"), 2)
	before := c.State()

	out := c.AddLine(product("B", "s2", "9.99"), 1)

	assert.Equal(t, RejectedWrongStore, out)
	assert.True(t, out.Rejected())
	assert.Equal(t, before, c.State())
	assert.Equal(t, 2, c.ItemCount())
	assertDecimal(t, "8.50", c.Subtotal())
}

func TestAddLineWithoutStoreIsRejected(t *testing.T) {
	c := newTestCart()

	out := c.AddLine(product("A", "", "1"), 1)

	assert.Equal(t, RejectedWrongStore, out)
	assert.True(t, c.Empty())
	assert.Empty(t, c.BoundStore())
}

func TestStorelessLineDoesNotSurviveRoundTrip(t *testing.T) {
	c := newTestCart()
	c.AddLine(product("A", "", "1"), 1)
	require.Equal(t, Added, c.AddLine(product("B", "s2", "2"), 1))

	require.Len(t, c.Lines(), 1)
	assert.Equal(t, "s2", c.BoundStore())
	assertTotalsConsistent(t, c)

	restored := FromState(c.State())
	assert.Equal(t, c.ItemCount(), restored.ItemCount())
	assert.True(t, c.Subtotal().Equal(restored.Subtotal()))
	assert.Equal(t, "s2", restored.BoundStore())
}

func TestSetLineQuantity(t *testing.T) {
	c := newTestCart()
	c.AddLine(product("A", "s1", "0.35"), 1)

	assert.Equal(t, Updated, c.SetLineQuantity("A", 7))
	assert.Equal(t, Unchanged, c.SetLineQuantity("A", 7))
	assertDecimal(t, "2.45", c.Subtotal())

	before := c.State()
	assert.Equal(t, NotFound, c.SetLineQuantity("missing", 3))
	assert.Equal(t, NotFound, c.SetLineQuantity("missing", 0))
	assert.Equal(t, before, c.State())
	assertTotalsConsistent(t, c)
}

func TestSetLineQuantityZeroMatchesRemove(t *testing.T) {
	build := func() *Cart {
		c := newTestCart()
		c.SetTaxRate(dec("0.07"))
		c.AddLine(product("A", "s1", "1.99"), 2)
		c.AddLine(product("B", "s1", "5.00"), 1)
		return c
	}

	for _, q := range []int{0, -1} {
		viaQuantity := build()
		viaRemove := build()

		assert.Equal(t, Removed, viaQuantity.SetLineQuantity("A", q))
		assert.Equal(t, Removed, viaRemove.RemoveLine("A"))
		assert.Equal(t, viaRemove.State(), viaQuantity.State())
		assertTotalsConsistent(t, viaQuantity)
	}
}

func TestRemoveLine(t *testing.T) {
	c := newTestCart()
	c.AddLine(product("A", "s1", "1"), 1)
	c.AddLine(product("B", "s1", "2"), 1)
	c.AddLine(product("C", "s1", "3"), 1)

	assert.Equal(t, Removed, c.RemoveLine("B"))
	assert.Equal(t, NotFound, c.RemoveLine("B"))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "A", lines[0].Product.ID)
	assert.Equal(t, "C", lines[1].Product.ID)
	assertDecimal(t, "4", c.Subtotal())
}

func TestClearKeepsBindingAndTax(t *testing.T) {
	c := newTestCart()
	c.SetTaxRate(dec("0.05"))
	c.AddLine(product("A", "s1", "10"), 2)
	c.MarkPending()

	assert.Equal(t, Cleared, c.Clear())
	assert.Equal(t, Unchanged, c.Clear())
	assert.True(t, c.Empty())
	assert.Equal(t, "s1", c.BoundStore())
	assertDecimal(t, "0.05", c.TaxRate())
	assert.True(t, c.Pending())
}

func TestSetBoundStore(t *testing.T) {
	c := newTestCart()
	assert.Equal(t, Updated, c.SetBoundStore("s1"))
	assert.Equal(t, Unchanged, c.SetBoundStore("s1"))

	c.AddLine(product("A", "s1", "1.50"), 4)
	c.SetTaxRate(dec("0.2"))

	assert.Equal(t, Cleared, c.SetBoundStore("s2"))
	assert.True(t, c.Empty())
	assert.Equal(t, "s2", c.BoundStore())
	assertDecimal(t, "0.2", c.TaxRate())

	assert.Equal(t, Updated, c.SetBoundStore("s3"))
	assert.Equal(t, Added, c.AddLine(product("B", "s3", "1"), 1))
	assert.Equal(t, RejectedWrongStore, c.AddLine(product("A", "s1", "1.50"), 1))
}

func TestSetTaxRate(t *testing.T) {
	c := newTestCart()
	c.AddLine(product("A", "s1", "100"), 1)

	assert.Equal(t, Updated, c.SetTaxRate(dec("0.0825")))
	assert.Equal(t, Unchanged, c.SetTaxRate(dec("0.08250")))
	assertDecimal(t, "8.25", c.TaxAmount())
	assertDecimal(t, "108.25", c.Total())

	assert.Equal(t, Updated, c.SetTaxRate(dec("-0.1")))
	assertDecimal(t, "0", c.TaxRate())
	assertDecimal(t, "100", c.Total())

	// No upper bound at this layer.
	c.SetTaxRate(dec("1.5"))
	assertDecimal(t, "250", c.Total())
}

func TestTotalsConsistentAcrossMutations(t *testing.T) {
	c := newTestCart()
	c.SetTaxRate(dec("0.0725"))
	steps := []func(){
		func() { c.AddLine(product("A", "s1", "0.10"), 3) },
		func() { c.AddLine(product("B", "s1", "0.20"), 1) },
		func() { c.AddLine(product("A", "s1", "0.10"), 2) },
		func() { c.AddLine(product("X", "s9", "7"), 1) },
		func() { c.SetLineQuantity("B", 11) },
		func() { c.RemoveLine("nope") },
		func() { c.SetTaxRate(dec("0.13")) },
		func() { c.SetLineQuantity("A", 0) },
		func() { c.Clear() },
	}
	for _, step := range steps {
		step()
		assertTotalsConsistent(t, c)
	}
}

func TestDecimalAvoidsFloatDrift(t *testing.T) {
	c := newTestCart()
	c.AddLine(product("A", "s1", "0.1"), 1)
	c.AddLine(product("B", "s1", "0.2"), 1)

	assertDecimal(t, "0.3", c.Subtotal())
}

func TestLinesReturnsCopy(t *testing.T) {
	c := newTestCart()
	c.AddLine(product("A", "s1", "1"), 1)

	lines := c.Lines()
	lines[0].Quantity = 99

	assert.Equal(t, 1, c.ItemCount())
}

func TestLastModifiedFollowsClock(t *testing.T) {
	now := fixedNow
	c := New(WithClock(func() time.Time { return now }))

	now = now.Add(time.Minute)
	c.AddLine(product("A", "s1", "1"), 1)
	assert.Equal(t, fixedNow.Add(time.Minute), c.LastModified())

	now = now.Add(time.Minute)
	c.AddLine(product("B", "s2", "1"), 1)
	assert.Equal(t, fixedNow.Add(time.Minute), c.LastModified(), "rejected mutation must not touch the timestamp")
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "added", Added.String())
	assert.Equal(t, "rejected_wrong_store", RejectedWrongStore.String())
	assert.Equal(t, "unknown", Outcome(42).String())
	assert.False(t, Updated.Rejected())

	text, err := NotFound.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "not_found", string(text))
}
