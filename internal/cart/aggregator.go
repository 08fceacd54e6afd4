// Package cart aggregates purchase intents into one line per sweet.
package cart

import (
	"time"

	"sweet-shop/internal/model"
)

// Aggregator is not safe for concurrent use; the storefront event loop owns it.
type Aggregator struct {
	lines []model.CartLine
	index map[int64]int
}

func NewAggregator() *Aggregator {
	return &Aggregator{index: map[int64]int{}}
}

// AddOrIncrement records one more unit of sweet. The first add copies the
// display fields from sweet; later adds only bump the count. Stock is not
// consulted.
func (a *Aggregator) AddOrIncrement(sweet model.Sweet) model.CartLine {
	if i, ok := a.index[sweet.ID]; ok {
		a.lines[i].Quantity++
		return a.lines[i]
	}

	line := model.CartLine{
		ID:       sweet.ID,
		Name:     sweet.Name,
		Category: sweet.Category,
		Price:    sweet.Price,
		ImageURL: sweet.ImageURL,
		Quantity: 1,
	}
	a.index[sweet.ID] = len(a.lines)
	a.lines = append(a.lines, line)
	return line
}

func (a *Aggregator) Clear() {
	a.lines = nil
	a.index = map[int64]int{}
}

// Lines returns a copy ordered by first add.
func (a *Aggregator) Lines() []model.CartLine {
	return append(make([]model.CartLine, 0, len(a.lines)), a.lines...)
}

func (a *Aggregator) Line(id int64) (model.CartLine, bool) {
	i, ok := a.index[id]
	if !ok {
		return model.CartLine{}, false
	}
	return a.lines[i], true
}

// Count is the number of distinct lines.
func (a *Aggregator) Count() int {
	return len(a.lines)
}

func (a *Aggregator) Total() float64 {
	var total float64
	for _, line := range a.lines {
		total += line.Subtotal()
	}
	return total
}

func (a *Aggregator) View() model.CartView {
	return model.CartView{Lines: a.Lines(), Count: a.Count(), Total: a.Total()}
}

// Checkout captures the cart as a receipt and empties it.
func (a *Aggregator) Checkout(now time.Time) model.Receipt {
	receipt := model.Receipt{Lines: a.Lines(), Total: a.Total(), CheckedOutAt: now}
	a.Clear()
	return receipt
}
