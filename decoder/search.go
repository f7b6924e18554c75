package decoder

import (
	"github.com/wanderber/wanderber/ber"
	"github.com/wanderber/wanderber/errs"
	"github.com/wanderber/wanderber/schema"
)

// searchFrame is one explicit schema-context stack frame, spec.md §9
// "Manual stack of schema contexts ... retain this explicit stack ... the
// stack grows in increments of 10 frames."
type searchFrame struct {
	node    *schema.Node
	ordinal int // next positional index for universal sequence-of matching
}

// Search implements the schema-driven search, spec.md §4.4.
//
// It must be called with the decoder positioned on the item whose children
// should be searched (i.e. after a Next() call has produced the container,
// or before any Next() call to search from the top of the buffer). The
// search establishes its base level as one past the decoder's current item
// (or 0 if nothing has been decoded yet) and only considers items at or
// below that level.
func Search(d *Decoder, root *schema.Node, targets []*schema.Target, stopThreshold int) ([]schema.FoundEntry, error) {
	for _, t := range targets {
		t.Found = false
	}

	if stopThreshold <= 0 {
		stopThreshold = len(targets)
	}

	baseLevel := 0
	if entry := d.CurrentItem(); entry != nil {
		baseLevel = entry.Level() + 1
	}

	stack := make([]searchFrame, 1, 10)
	stack[0] = searchFrame{node: root}

	var found []schema.FoundEntry

	for len(found) < stopThreshold {
		it, err := d.Next()
		if err == errs.ErrEndOfStream {
			break
		}
		if err != nil {
			return found, err
		}

		relLevel := it.Level() - baseLevel
		if relLevel < 0 {
			break
		}
		if relLevel > len(stack)-1 {
			// Can't happen on a well-formed sequential walk (level rises by
			// at most one step at a time); treat as end of the searchable
			// region rather than panicking on malformed input.
			break
		}

		for len(stack)-1 > relLevel {
			stack = stack[:len(stack)-1]
		}

		cur := &stack[len(stack)-1]

		switch it.Class() {
		case ber.ContextPrimitive, ber.ContextConstructed:
			action := cur.node.Member(int(it.Identifier()))
			if action != nil {
				for ti, t := range targets {
					if t.Found || t.Parent != cur.node || t.Identifier != int(it.Identifier()) {
						continue
					}

					t.Found = true
					found = append(found, schema.FoundEntry{
						Level:       it.Level(),
						Class:       uint8(it.Class()),
						Identifier:  it.Identifier(),
						ValueOffset: it.ValueOffset(),
						ValueLength: it.ContentLen(),
						TargetIndex: ti,
						InterpretAs: action.InterpretAs,
					})
				}
			}

			if it.Class() == ber.ContextConstructed {
				if action != nil && action.Descend != nil {
					stack = append(stack, searchFrame{node: action.Descend})
				} else if _, err := d.Skip(); err != nil {
					return found, err
				}
			}

		case ber.UniversalPrimitive, ber.UniversalConstructed:
			ordinal := cur.ordinal
			cur.ordinal++

			var seqAction *schema.MemberAction
			if cur.node.Sequence != nil {
				seqAction = cur.node.Sequence
			}

			for ti, t := range targets {
				if t.Found || t.Parent != cur.node || t.Identifier != ordinal {
					continue
				}

				t.Found = true
				entry := schema.FoundEntry{
					Level:       it.Level(),
					Class:       uint8(it.Class()),
					Identifier:  it.Identifier(),
					ValueOffset: it.ValueOffset(),
					ValueLength: it.ContentLen(),
					TargetIndex: ti,
				}
				if seqAction != nil {
					entry.InterpretAs = seqAction.InterpretAs
				}
				found = append(found, entry)
			}

			if it.Class() == ber.UniversalConstructed {
				if seqAction != nil && seqAction.Descend != nil {
					stack = append(stack, searchFrame{node: seqAction.Descend})
				} else if _, err := d.Skip(); err != nil {
					return found, err
				}
			}

		default:
			if it.Class().Constructed() {
				if _, err := d.Skip(); err != nil {
					return found, err
				}
			}
		}
	}

	return found, nil
}
