package state

import (
	"slices"

	"github.com/desertthunder/spt/internal/models"
)

// Pages is an ordered cache of fetched pages with a cursor on the page being viewed.
type Pages[T any] struct {
	pages []models.Page[T]
	index int
}

// Add appends page, or overwrites the cached page with the same offset so a re-fetch never duplicates.
func (p *Pages[T]) Add(page models.Page[T]) {
	for i := range p.pages {
		if p.pages[i].Offset == page.Offset {
			p.pages[i] = page
			return
		}
	}
	p.pages = append(p.pages, page)
}

// Extend appends items to the page at position i.
func (p *Pages[T]) Extend(i int, items ...T) bool {
	if i < 0 || i >= len(p.pages) {
		return false
	}
	page := p.pages[i]
	page.Items = append(slices.Clip(page.Items), items...)
	page.Total = max(page.Total, len(page.Items))
	p.pages[i] = page
	return true
}

// Current returns the page at the cursor.
func (p Pages[T]) Current() (models.Page[T], bool) {
	return p.At(p.index)
}

// At returns the page at position i in fetch order.
func (p Pages[T]) At(i int) (models.Page[T], bool) {
	if i < 0 || i >= len(p.pages) {
		return models.Page[T]{}, false
	}
	return p.pages[i], true
}

// Last returns the most recently appended page.
func (p Pages[T]) Last() (models.Page[T], bool) {
	return p.At(len(p.pages) - 1)
}

// Index returns the cursor position.
func (p Pages[T]) Index() int { return p.index }

// SetIndex moves the cursor, ignoring out of range positions.
func (p *Pages[T]) SetIndex(i int) bool {
	if i < 0 || i >= len(p.pages) {
		return false
	}
	p.index = i
	return true
}

// Find returns the position of the page fetched at offset.
func (p Pages[T]) Find(offset int) (int, bool) {
	for i := range p.pages {
		if p.pages[i].Offset == offset {
			return i, true
		}
	}
	return 0, false
}

// Len is the number of cached pages.
func (p Pages[T]) Len() int { return len(p.pages) }

// Total is the remote collection size reported by the most recent page.
func (p Pages[T]) Total() int {
	if last, ok := p.Last(); ok {
		return last.Total
	}
	return 0
}

// Count is the number of items across every cached page.
func (p Pages[T]) Count() int {
	n := 0
	for _, page := range p.pages {
		n += len(page.Items)
	}
	return n
}

// Items flattens every cached page in fetch order.
func (p Pages[T]) Items() []T {
	items := make([]T, 0, p.Count())
	for _, page := range p.pages {
		items = append(items, page.Items...)
	}
	return items
}

// Window returns the pagination window of the page at the cursor.
func (p Pages[T]) Window() Window {
	page, ok := p.Current()
	if !ok {
		return Window{}
	}
	return Window{Offset: page.Offset, PageSize: page.Limit, Total: page.Total}
}

// Reset drops every cached page.
func (p *Pages[T]) Reset() {
	p.pages = nil
	p.index = 0
}

func (p Pages[T]) clone() Pages[T] {
	out := Pages[T]{index: p.index}
	if p.pages != nil {
		out.pages = make([]models.Page[T], len(p.pages))
		copy(out.pages, p.pages)
	}
	return out
}
