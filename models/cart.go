package models

import "time"

type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

func (s Size) Valid() bool {
	return s == SizeSmall || s == SizeMedium || s == SizeLarge
}

// LinePolicy decides what adding an item that is already in the cart does.
type LinePolicy string

const (
	// MergeLines bumps the quantity of the existing line with the same item and size.
	MergeLines LinePolicy = "merge"
	// AppendLines always starts a new line.
	AppendLines LinePolicy = "append"
)

// CartLine is one (menu item, size, quantity) entry. Item is a snapshot taken when the
// line was created, so later catalog edits do not reprice it.
type CartLine struct {
	ID       string   `json:"id"`
	Item     MenuItem `json:"item"`
	Size     Size     `json:"size"`
	Quantity int      `json:"quantity"`
}

type Cart struct {
	UserID    string     `json:"user_id"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Lines: []CartLine{}}
}

// AddItem puts item in the cart in the given size. newID is only called when a new line is created.
func (c *Cart) AddItem(item MenuItem, size Size, policy LinePolicy, newID func() string) CartLine {
	if policy != AppendLines {
		for i := range c.Lines {
			if c.Lines[i].Item.ID == item.ID && c.Lines[i].Size == size {
				c.Lines[i].Quantity++
				return c.Lines[i]
			}
		}
	}
	line := CartLine{ID: newID(), Item: item.Clone(), Size: size, Quantity: 1}
	c.Lines = append(c.Lines, line)
	return line
}

// SetQuantity stores qty on the line, or removes the line when qty < 1.
// It returns false if the line does not exist.
func (c *Cart) SetQuantity(lineID string, qty int) bool {
	i := c.index(lineID)
	if i < 0 {
		return false
	}
	if qty < 1 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		return true
	}
	c.Lines[i].Quantity = qty
	return true
}

// RemoveLine drops the line; false if it was not there.
func (c *Cart) RemoveLine(lineID string) bool {
	i := c.index(lineID)
	if i < 0 {
		return false
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return true
}

// Consume takes the quantities of ordered lines out of the cart, matching by line id.
// Lines that reach zero are removed; anything added after the lines were taken stays.
func (c *Cart) Consume(ordered []CartLine) {
	for _, o := range ordered {
		i := c.index(o.ID)
		if i < 0 {
			continue
		}
		if c.Lines[i].Quantity <= o.Quantity {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			continue
		}
		c.Lines[i].Quantity -= o.Quantity
	}
}

func (c *Cart) Clear() {
	c.Lines = []CartLine{}
}

// ItemCount is the total quantity across all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Snapshot deep-copies the lines so the result is unaffected by later cart changes.
func (c *Cart) Snapshot() []CartLine {
	out := make([]CartLine, len(c.Lines))
	for i, l := range c.Lines {
		l.Item = l.Item.Clone()
		out[i] = l
	}
	return out
}

func (c *Cart) Clone() *Cart {
	return &Cart{UserID: c.UserID, Lines: c.Snapshot(), UpdatedAt: c.UpdatedAt}
}

func (c *Cart) index(lineID string) int {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return i
		}
	}
	return -1
}
