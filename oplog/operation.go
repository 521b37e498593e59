package oplog

import "github.com/cshekharsharma/causalcrdt/rle"

// Kind distinguishes an Operation's effect on the document.
type Kind int

const (
	Insert Kind = iota
	Delete
)

// String renders k for debug output and error messages.
func (k Kind) String() string {
	if k == Insert {
		return "Insert"
	}
	return "Delete"
}

// Operation is one run-length-encoded entry in the op-log's operation
// table: a contiguous positional edit by one agent (spec §3 "Operation").
//
// Pos is the position at the time the operation was produced (not
// retroactively transformed by later concurrent edits — that happens in
// package xform). Fwd is false when a Delete was entered right-to-left
// (backspacing): the resulting edit is equivalent under the placement
// algorithm, but the distinction must round-trip byte-exact through the
// wire encoding.
type Operation struct {
	Kind Kind
	Pos  int
	// Length is the span's logical length; named Length rather than Len
	// since Len is reserved for the rle.Span method.
	Length int
	Fwd    bool
	// Content holds the inserted text for Kind == Insert. Empty (and
	// meaningless) for Kind == Delete.
	Content string
}

var _ rle.Span = (*Operation)(nil)

// Len satisfies rle.Span.
func (o *Operation) Len() int { return o.Length }

// SplitAt divides the operation at offset n (0 < n < Len()), mutating the
// receiver into the left half and returning the right half. Content (for
// inserts) is split on the same boundary; Pos on the returned right half
// advances by n for Fwd deletes (continuing rightward) and stays at the
// same Pos for backward (!Fwd) deletes, since a backspace run deletes
// position Pos repeatedly as the document shrinks underneath it.
func (o *Operation) SplitAt(n int) rle.Span {
	right := &Operation{Kind: o.Kind, Fwd: o.Fwd, Length: o.Length - n}
	switch o.Kind {
	case Insert:
		right.Pos = o.Pos + n
		right.Content = o.Content[n:]
		o.Content = o.Content[:n]
	case Delete:
		if o.Fwd {
			right.Pos = o.Pos + n
		} else {
			right.Pos = o.Pos
		}
	}
	o.Length = n
	return right
}

// CanAppend implements the conservative merge rule from spec §9 open
// question 1 / SPEC_FULL open question 1: inserts only fuse with an
// adjacent insert at a contiguous position with matching Fwd; deletes only
// fuse with an adjacent delete at the same position with matching Fwd;
// insert and delete never fuse, even though a more permissive rule would
// compress further.
func (o *Operation) CanAppend(other rle.Span) bool {
	n, ok := other.(*Operation)
	if !ok || n.Kind != o.Kind || n.Fwd != o.Fwd {
		return false
	}
	switch o.Kind {
	case Insert:
		return o.Pos+o.Length == n.Pos
	case Delete:
		if o.Fwd {
			return o.Pos+o.Length == n.Pos
		}
		return o.Pos == n.Pos
	}
	return false
}

// Append fuses other onto the end of o. Only legal when CanAppend(other).
func (o *Operation) Append(other rle.Span) {
	n := other.(*Operation)
	if o.Kind == Insert {
		o.Content += n.Content
	}
	o.Length += n.Length
}

// Slice returns a new Operation covering the logical sub-range
// [offset, offset+length) of o, without mutating the receiver. Used by the
// codec when a patch boundary falls inside an RLE-merged run, and by
// package xform when a CG diff range falls inside one.
func (o *Operation) Slice(offset, length int) *Operation {
	out := &Operation{Kind: o.Kind, Fwd: o.Fwd, Length: length}
	switch o.Kind {
	case Insert:
		out.Pos = o.Pos + offset
		out.Content = o.Content[offset : offset+length]
	case Delete:
		if o.Fwd {
			out.Pos = o.Pos + offset
		} else {
			out.Pos = o.Pos
		}
	}
	return out
}

// Prepend fuses other onto the start of o.
func (o *Operation) Prepend(other rle.Span) {
	n := other.(*Operation)
	if o.Kind == Insert {
		o.Content = n.Content + o.Content
		o.Pos = n.Pos
	} else if o.Fwd {
		o.Pos = n.Pos
	}
	o.Length += n.Length
}
