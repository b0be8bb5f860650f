package workdrive

// ContentIterator yields the child records fetched by ListContents. It walks
// a single fetched batch: finite, forward-only, not restartable.
type ContentIterator struct {
	items []Attributes
	pos   int
}

// Next returns the next child record, or false when the batch is exhausted.
func (it *ContentIterator) Next() (Attributes, bool) {
	if it == nil || it.pos >= len(it.items) {
		return nil, false
	}
	item := it.items[it.pos]
	it.pos++
	return item, true
}

// Remaining reports how many records have not been yielded yet.
func (it *ContentIterator) Remaining() int {
	if it == nil {
		return 0
	}
	return len(it.items) - it.pos
}
