package state

// Window is offset pagination over a remote collection of Total items fetched PageSize at a time.
type Window struct {
	Offset   int
	PageSize int
	Total    int
}

// Next returns the offset of the following page.
func (w Window) Next() (int, bool) {
	if w.PageSize <= 0 || w.Offset+w.PageSize >= w.Total {
		return w.Offset, false
	}
	return w.Offset + w.PageSize, true
}

// Previous returns the offset of the preceding page. An offset inside the first page clamps to 0.
// After [Window.Last] the offsets are no longer multiples of PageSize: with 45 items in pages
// of 20, Previous from 25 is 5, a window that overlaps the pages cached at 0 and 20.
func (w Window) Previous() (int, bool) {
	switch {
	case w.Offset <= 0:
		return 0, false
	case w.Offset >= w.PageSize:
		return w.Offset - w.PageSize, true
	default:
		return 0, true
	}
}

// Last returns the offset of the final window, aligned so it ends on the last item rather than
// on a page boundary. With 45 items in pages of 20 it is 25, not 40.
func (w Window) Last() (int, bool) {
	if w.PageSize <= 0 || w.PageSize >= w.Total {
		return w.Offset, false
	}
	return w.Total - w.PageSize, true
}

// First returns the offset of the first page.
func (w Window) First() int { return 0 }
