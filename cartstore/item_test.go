package cartstore

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestEncodeCartNilIsEmptyArray(t *testing.T) {
	raw, err := EncodeCart(nil)
	assert.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestDecodeCartRejectsWrongShape(t *testing.T) {
	_, err := DecodeCart(`{"id":"a"}`)
	assert.Error(t, err)

	_, err = DecodeCart(`[{"id":"a","quantity":"two"}]`)
	assert.Error(t, err)
}

func TestCartHelpers(t *testing.T) {
	c := Cart{
		{Product: Product{ID: "a"}, Quantity: 2},
		{Product: Product{ID: "b"}, Quantity: -1},
	}
	assert.Equal(t, 1, c.Index("b"))
	assert.Equal(t, -1, c.Index("z"))
	assert.Equal(t, 1, c.TotalQuantity())

	clone := c.Clone()
	clone[0].Quantity = 10
	assert.Equal(t, 2, c[0].Quantity)
}
