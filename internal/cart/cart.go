// Package cart holds the server-side session carts: one variant-keyed,
// insertion-ordered container per customer. Carts live only in memory for
// the duration of a session; orders are the durable record.
package cart

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Key identifies a cart line: the same product in the same size and color
// always collapses into one line. Structural equality, so a color
// containing the wire delimiter cannot collide with another variant.
type Key struct {
	ProductID uint
	Size      string
	Color     string
}

// String renders the wire form "id|size|color" used by the storefront to
// reference lines.
func (k Key) String() string {
	return fmt.Sprintf("%d|%s|%s", k.ProductID, k.Size, k.Color)
}

// ParseKey parses the wire form. The color keeps everything after the
// second delimiter, so colors containing '|' round-trip.
func ParseKey(s string) (Key, error) {
	parts := strings.SplitN(s, "|", 3)
	if len(parts) != 3 {
		return Key{}, fmt.Errorf("malformed cart key %q", s)
	}
	id, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return Key{}, fmt.Errorf("malformed cart key %q: %w", s, err)
	}
	return Key{ProductID: uint(id), Size: parts[1], Color: parts[2]}, nil
}

// Line is one cart entry. Name, price and image are captured when the line
// is first added and are not re-synced if the product changes later.
type Line struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"image_url"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
	Quantity  int     `json:"quantity"`
}

// KeyedLine is a Line annotated with its key, as returned to callers.
type KeyedLine struct {
	Key string `json:"key"`
	Line
}

// Cart is one customer's cart. All methods are safe for concurrent use,
// though a single session normally issues one request at a time.
type Cart struct {
	mu    sync.Mutex
	order []Key
	lines map[Key]Line
}

func New() *Cart {
	return &Cart{lines: make(map[Key]Line)}
}

// Add merges the line into the cart: a repeat add of the same variant
// increments the existing quantity, a new variant is appended. Returns the
// stored line and its resulting quantity.
func (c *Cart) Add(k Key, l Line) Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.lines[k]; ok {
		existing.Quantity += l.Quantity
		c.lines[k] = existing
		return existing
	}
	c.order = append(c.order, k)
	c.lines[k] = l
	return l
}

func (c *Cart) Get(k Key) (Line, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.lines[k]
	return l, ok
}

// SetQuantity overwrites the quantity of an existing line. Reports whether
// the line was present.
func (c *Cart) SetQuantity(k Key, quantity int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.lines[k]
	if !ok {
		return false
	}
	l.Quantity = quantity
	c.lines[k] = l
	return true
}

// Remove deletes the line if present. Removing an absent key is a no-op.
func (c *Cart) Remove(k Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(k)
}

// RemoveAll deletes every given key in one critical section. Used by
// checkout to drop exactly the committed lines.
func (c *Cart) RemoveAll(keys []Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		c.remove(k)
	}
}

func (c *Cart) remove(k Key) {
	if _, ok := c.lines[k]; !ok {
		return
	}
	delete(c.lines, k)
	for i, o := range c.order {
		if o == k {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Lines returns all lines in insertion order.
func (c *Cart) Lines() []KeyedLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]KeyedLine, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, KeyedLine{Key: k.String(), Line: c.lines[k]})
	}
	return out
}

// Subtotal is price x quantity summed over every line in the cart.
func (c *Cart) Subtotal() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var sum float64
	for _, l := range c.lines {
		sum += l.Price * float64(l.Quantity)
	}
	return sum
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}
