package rope

import "github.com/cshekharsharma/causalcrdt/rle"

// Content is the rle.Span this tree stores: a run of text produced by one
// insert operation, optionally tombstoned by a later delete. Deletes never
// remove a Content entry from the tree (spec §9 open question 2 / Non-goal
// "no garbage collection of tombstoned history") — they flip Deleted on
// the covered sub-range, splitting the entry at either boundary first if
// the delete doesn't align with existing entry edges.
type Content struct {
	Text    string
	Deleted bool
}

var _ rle.Span = (*Content)(nil)

// Len satisfies rle.Span.
func (c *Content) Len() int { return len(c.Text) }

// SplitAt divides c at byte offset n, mutating the receiver into the left
// half and returning the right half. Deleted is copied to both halves.
func (c *Content) SplitAt(n int) rle.Span {
	right := &Content{Text: c.Text[n:], Deleted: c.Deleted}
	c.Text = c.Text[:n]
	return right
}

// CanAppend holds when both runs share the same tombstone state — a
// tombstoned run never fuses with a visible one, since that would lose the
// boundary a future query needs to tell them apart.
func (c *Content) CanAppend(other rle.Span) bool {
	o, ok := other.(*Content)
	return ok && o.Deleted == c.Deleted
}

// Append fuses other onto the end of c.
func (c *Content) Append(other rle.Span) {
	c.Text += other.(*Content).Text
}

// Prepend fuses other onto the start of c.
func (c *Content) Prepend(other rle.Span) {
	c.Text = other.(*Content).Text + c.Text
}
