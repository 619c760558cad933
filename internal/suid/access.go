package suid

// AccessIndexTable numbers the program elements reached across class
// boundaries in first-seen order. It lives for one computation only.
type AccessIndexTable struct {
	next    int
	indices map[any]int
}

func newAccessIndexTable() *AccessIndexTable {
	return &AccessIndexTable{indices: make(map[any]int)}
}

// Index returns the index of key, assigning the next free one on first use.
func (t *AccessIndexTable) Index(key any) int {
	if idx, ok := t.indices[key]; ok {
		return idx
	}
	idx := t.next
	t.indices[key] = idx
	t.next++
	return idx
}

// Len returns the number of indexed elements.
func (t *AccessIndexTable) Len() int {
	return t.next
}
