package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/client"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var faker = gofakeit.New(42)

func fakeItem(id int64, price string, stock int) model.Item {
	return model.Item{
		ID:            id,
		Name:          faker.BookTitle(),
		Category:      faker.BookGenre(),
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
	}
}

func randomItem(id int64) model.Item {
	return model.Item{
		ID:            id,
		Name:          faker.BookTitle(),
		Category:      faker.BookGenre(),
		Price:         decimal.NewFromFloat(faker.Price(1, 200)).Round(2),
		StockQuantity: faker.Number(2, 50),
	}
}

type fakeSubmitter struct {
	got    *model.NewSale
	result client.Result[model.Sale]
}

func (f *fakeSubmitter) Create(_ context.Context, sale model.NewSale) client.Result[model.Sale] {
	f.got = &sale
	return f.result
}

func TestAddThenTotalEqualsPrice(t *testing.T) {
	for i := int64(1); i <= 20; i++ {
		item := randomItem(i)
		c := New()

		require.True(t, c.Add(item))
		assert.True(t, item.Price.Equal(c.Total()), "item %d", i)

		require.True(t, c.Add(item))
		assert.True(t, item.Price.Mul(decimal.NewFromInt(2)).Equal(c.Total()))
	}
}

func TestAddRespectsStockSnapshot(t *testing.T) {
	c := New()

	assert.False(t, c.Add(fakeItem(1, "9.99", 0)))
	assert.Empty(t, c.Lines())

	single := fakeItem(2, "4.00", 1)
	assert.True(t, c.Add(single))
	assert.False(t, c.Add(single))
	assert.Equal(t, 1, c.Count())
	assert.True(t, decimal.RequireFromString("4").Equal(c.Total()))
}

func TestTwoLineTotal(t *testing.T) {
	c := New()
	a := fakeItem(1, "10", 5)
	b := fakeItem(2, "5", 5)

	c.Add(a)
	c.Add(a)
	c.Add(b)

	assert.True(t, decimal.NewFromInt(25).Equal(c.Total()))
	assert.Equal(t, 3, c.Count())
}

func TestSetQuantity(t *testing.T) {
	c := New()
	a := fakeItem(1, "10", 3)
	b := fakeItem(2, "2.50", 10)
	c.Add(a)
	c.Add(b)

	c.SetQuantity(a.ID, 99)
	assert.Equal(t, 3, c.Lines()[0].Quantity)

	c.SetQuantity(b.ID, 0)
	require.Len(t, c.Lines(), 1)
	assert.True(t, decimal.NewFromInt(30).Equal(c.Total()))

	c.SetQuantity(a.ID, -1)
	assert.Empty(t, c.Lines())
	assert.True(t, c.Total().IsZero())

	c.SetQuantity(77, 4)
	assert.Empty(t, c.Lines())
}

func TestRemove(t *testing.T) {
	c := New()
	c.Add(fakeItem(1, "1", 1))
	c.Add(fakeItem(2, "2", 1))

	c.Remove(1)
	c.Remove(1)
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(2), lines[0].Item.ID)
}

func TestCheckoutSuccessClearsCart(t *testing.T) {
	ctx := context.Background()
	c := New()
	c.Add(fakeItem(1, "10", 5))
	c.Add(fakeItem(1, "10", 5))
	c.Add(fakeItem(2, "5", 5))

	sub := &fakeSubmitter{result: client.Ok(model.Sale{ID: 501})}
	sale, err := c.Checkout(ctx, sub, model.PaymentMobileMoney, Customer{Phone: " 0244000000 "})
	require.NoError(t, err)

	assert.Equal(t, int64(501), sale.ID)
	assert.True(t, decimal.NewFromInt(25).Equal(sale.TotalAmount))
	assert.Empty(t, c.Lines())

	require.NotNil(t, sub.got)
	assert.Equal(t, model.DefaultCustomerName, sub.got.CustomerName)
	assert.Equal(t, "0244000000", sub.got.CustomerPhone)
	assert.Equal(t, model.PaymentMobileMoney, sub.got.PaymentMethod)
	require.Len(t, sub.got.Items, 2)
	assert.Equal(t, 2, sub.got.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(10).Equal(sub.got.Items[0].Price))
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	c := New()
	c.Add(fakeItem(1, "10", 5))

	sub := &fakeSubmitter{result: client.Err[model.Sale]("Insufficient stock")}
	_, err := c.Checkout(ctx, sub, model.PaymentCash, Customer{Name: "Efua"})
	require.Error(t, err)
	assert.Equal(t, "Insufficient stock", err.Error())
	assert.Len(t, c.Lines(), 1)
	assert.Equal(t, "Efua", sub.got.CustomerName)
}

// blockingSubmitter holds the sale until release is closed
type blockingSubmitter struct {
	entered chan struct{}
	release chan struct{}
	result  client.Result[model.Sale]
}

func (b *blockingSubmitter) Create(_ context.Context, _ model.NewSale) client.Result[model.Sale] {
	close(b.entered)
	<-b.release
	return b.result
}

func TestCheckoutDoesNotBlockReaders(t *testing.T) {
	ctx := context.Background()
	c := New()
	c.Add(fakeItem(1, "10", 5))
	c.Add(fakeItem(1, "10", 5))

	sub := &blockingSubmitter{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		result:  client.Ok(model.Sale{ID: 77}),
	}
	done := make(chan error, 1)
	go func() {
		_, err := c.Checkout(ctx, sub, model.PaymentCash, Customer{})
		done <- err
	}()
	<-sub.entered

	read := make(chan decimal.Decimal, 1)
	go func() { read <- c.Total() }()
	select {
	case got := <-read:
		assert.True(t, decimal.NewFromInt(20).Equal(got))
	case <-time.After(time.Second):
		t.Fatal("Total blocked while the sale was in flight")
	}

	_, err := c.Checkout(ctx, &fakeSubmitter{}, model.PaymentCash, Customer{})
	assert.ErrorIs(t, err, ErrCheckoutInProgress)

	c.Add(fakeItem(1, "10", 5))
	c.Add(fakeItem(2, "4", 3))

	close(sub.release)
	require.NoError(t, <-done)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, int64(1), lines[0].Item.ID)
	assert.Equal(t, int64(2), lines[1].Item.ID)
	assert.Equal(t, 1, lines[1].Quantity)
}

func TestFailedCheckoutAllowsRetry(t *testing.T) {
	ctx := context.Background()
	c := New()
	c.Add(fakeItem(1, "10", 5))

	_, err := c.Checkout(ctx, &fakeSubmitter{result: client.Err[model.Sale]("Backend down")}, model.PaymentCash, Customer{})
	require.Error(t, err)

	sale, err := c.Checkout(ctx, &fakeSubmitter{result: client.Ok(model.Sale{ID: 3})}, model.PaymentCash, Customer{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), sale.ID)
	assert.Empty(t, c.Lines())
}

func TestCheckoutRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	sub := &fakeSubmitter{}

	_, err := New().Checkout(ctx, sub, model.PaymentCash, Customer{})
	assert.ErrorIs(t, err, ErrEmptyCart)

	c := New()
	c.Add(fakeItem(1, "1", 1))
	_, err = c.Checkout(ctx, sub, "cheque", Customer{})
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
	assert.Nil(t, sub.got)
}

func TestConcurrentAdds(t *testing.T) {
	c := New()
	item := fakeItem(1, "1.25", 40)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add(item)
		}()
	}
	wg.Wait()

	assert.Equal(t, 40, c.Count())
	assert.True(t, decimal.NewFromInt(50).Equal(c.Total()))
}

func TestRegistry(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	r := NewRegistry()
	r.now = func() time.Time { return now }

	a := r.Get("tab-a")
	a.Add(fakeItem(1, "3", 3))
	assert.Same(t, a, r.Get("tab-a"))
	assert.NotSame(t, a, r.Get("tab-b"))
	assert.Equal(t, 2, r.Len())

	now = now.Add(2 * time.Hour)
	r.Get("tab-b")
	assert.Equal(t, 1, r.Sweep(time.Hour))
	assert.Equal(t, 1, r.Len())

	r.Drop("tab-b")
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Get("tab-a").Lines())
}
