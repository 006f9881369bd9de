// mobilecart/cartstore/item.go

package cartstore

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Product is a catalog entry as handed to AddToCart.
type Product struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
}

// CartItem is one line of the cart: a product and its requested quantity.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// Cart is ordered by insertion; IDs are unique.
type Cart []CartItem

// Index returns the position of the item with the given ID, or -1.
func (c Cart) Index(id string) int {
	for i, item := range c {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy that shares nothing with c. A nil cart clones to an empty one.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// TotalQuantity sums the quantities of every line.
func (c Cart) TotalQuantity() int {
	n := 0
	for _, item := range c {
		n += item.Quantity
	}
	return n
}

// EncodeCart serializes a cart into the persisted JSON array layout.
func EncodeCart(c Cart) (string, error) {
	if c == nil {
		c = Cart{}
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, "marshal cart")
	}
	return string(b), nil
}

// DecodeCart parses the persisted JSON array layout. A JSON null yields an empty cart.
func DecodeCart(raw string) (Cart, error) {
	var c Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, errors.Wrap(err, "unmarshal cart")
	}
	if c == nil {
		c = Cart{}
	}
	return c, nil
}
