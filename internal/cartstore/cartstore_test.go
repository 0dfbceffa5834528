package cartstore

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storecart/internal/domain"
)

func sample() []domain.LineItem {
	return []domain.LineItem{
		{ProductID: "tee-001", Title: "Linen Tee", UnitPrice: decimal.RequireFromString("25.00"), Quantity: 2},
		{ProductID: "mug-002", Title: "Stoneware Mug", UnitPrice: decimal.RequireFromString("10.5"), Quantity: 1, SellerID: "seller-north"},
	}
}

func assertSameLines(t *testing.T, want, got []domain.LineItem) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ProductID, got[i].ProductID)
		assert.Equal(t, want[i].Title, got[i].Title)
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
		assert.Equal(t, want[i].SellerID, got[i].SellerID)
		assert.True(t, want[i].UnitPrice.Equal(got[i].UnitPrice), "price %s != %s", want[i].UnitPrice, got[i].UnitPrice)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	b, err := Encode(sample())
	require.NoError(t, err)
	got, err := Decode(b)
	require.NoError(t, err)
	assertSameLines(t, sample(), got)

	empty, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestDecodeRejectsCorruptPayloads(t *testing.T) {
	for _, raw := range []string{
		`{not json`,
		`{"id":"a","quantity":1}`,
		`[{"id":"","quantity":1}]`,
		`[{"id":"a","quantity":0}]`,
		`[{"id":"a","quantity":"two"}]`,
	} {
		_, err := Decode([]byte(raw))
		assert.ErrorIs(t, err, domain.ErrCorruptCart, raw)
	}
	items, err := Decode(nil)
	assert.NoError(t, err)
	assert.Empty(t, items)
}

func TestMemoryCopiesOnSave(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	in := sample()
	require.NoError(t, m.Save(ctx, in))
	in[0].Quantity = 99

	got, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, got[0].Quantity)
}

type fakeJar struct {
	in  map[string]string
	out []*fiber.Cookie
}

func (j *fakeJar) Cookies(key string, def ...string) string {
	if v, ok := j.in[key]; ok {
		return v
	}
	if len(def) > 0 {
		return def[0]
	}
	return ""
}

func (j *fakeJar) Cookie(c *fiber.Cookie) { j.out = append(j.out, c) }

func TestCookieStore(t *testing.T) {
	ctx := context.Background()
	jar := &fakeJar{in: map[string]string{}}
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewCookie(jar, true)
	s.now = func() time.Time { return now }

	items, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, s.Save(ctx, sample()))
	require.Len(t, jar.out, 1)
	c := jar.out[0]
	assert.Equal(t, CookieName, c.Name)
	assert.True(t, c.HTTPOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, now.Add(7*24*time.Hour), c.Expires)

	raw, err := url.QueryUnescape(c.Value)
	require.NoError(t, err)
	assert.Contains(t, raw, `"id":"tee-001"`)

	jar.in[CookieName] = c.Value
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assertSameLines(t, sample(), got)

	jar.in[CookieName] = "%zz"
	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrCorruptCart)
}

func TestCookieStoreRejectsOversizeCart(t *testing.T) {
	jar := &fakeJar{}
	s := NewCookie(jar, false)
	big := make([]domain.LineItem, 0, 200)
	for i := 0; i < 200; i++ {
		big = append(big, domain.LineItem{ProductID: "product-with-a-long-identifier", Title: "A rather long product title", Quantity: i + 1})
	}
	err := s.Save(context.Background(), big)
	assert.ErrorIs(t, err, ErrCookieTooLarge)
	assert.Empty(t, jar.out)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewRedis(client, "user:u-alice", time.Hour)
	items, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, s.Save(ctx, sample()))
	assert.Equal(t, time.Hour, mr.TTL("cart:user:u-alice"))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assertSameLines(t, sample(), got)

	require.NoError(t, mr.Set("cart:user:u-alice", "garbage"))
	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrCorruptCart)

	mr.Close()
	_, err = s.Load(ctx)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrCorruptCart))
}
