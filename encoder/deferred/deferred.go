// Package deferred implements the tree-based deferred BER encoder, spec.md
// §4.6: build a tree of pending (tag, value) jobs, compute each interior
// node's content length bottom-up once the caller closes a level with
// EndSeq, then emit bytes in one forward walk via Finish.
//
// Grounded directly on original_source/src/encoder.c's
// wandder_encode_next/_wandder_encode_endseq/wandder_encode_finish: a
// current-cursor walk where every inserted node becomes the new cursor,
// constructed nodes defer their content-length contribution to their
// parent until EndSeq closes them, and primitive/preencoded nodes
// contribute immediately since their size is already known. The result
// free-list is grounded on the teacher's (arloliu/mebo)
// internal/pool.ByteBufferPool mutex/pool pairing, adapted from resettable
// scratch buffers to a mutex-protected slice of finished []byte results
// since Finish results are read-only once produced.
package deferred

import (
	"sync"

	"github.com/wanderber/wanderber/ber"
	"github.com/wanderber/wanderber/errs"
	"github.com/wanderber/wanderber/schema"
)

// node is one pending encode job plus its tree links, spec.md §3 "Encoder
// tree node".
type node struct {
	class      ber.IdentifierClass
	identifier uint32
	encodeAs   schema.SemanticType

	value      []byte // staged value bytes, for a primitive/staged node
	preencoded []byte // already fully encoded bytes, copied verbatim

	preambleLen int
	contentLen  int // value length for a leaf; children-total-size once closed, for a constructed node

	parent      *node
	children    *node // first child
	lastChild   *node
	siblings    *node // next sibling

	childrenSize int
}

func (n *node) isConstructed() bool { return n.class.Constructed() }

// Encoder builds one tree of pending jobs, a cursor ("current") at a time,
// then flattens it to bytes with Finish.
type Encoder struct {
	root    *node
	current *node

	resultMu sync.Mutex
	results  [][]byte
}

// New creates an empty deferred encoder.
func New() *Encoder {
	return &Encoder{}
}

// EncodeNext implements encode_next, spec.md §4.6. value holds the
// already-appropriately-encoded value octets for encodeAs (e.g. produced by
// package ber's EncodeInteger/EncodeOID, or raw text bytes for a string
// type); class/id become the node's tag. A class whose Constructed() bit is
// set opens a new level: it becomes the cursor with no content-length
// contribution to its parent until EndSeq closes it.
func (e *Encoder) EncodeNext(class ber.IdentifierClass, id uint32, encodeAs schema.SemanticType, value []byte) error {
	staged, err := stage(encodeAs, value)
	if err != nil {
		return err
	}

	n := &node{class: class, identifier: id, encodeAs: encodeAs, value: staged}
	if !class.Constructed() {
		n.contentLen = len(staged)
		n.preambleLen = calcPreambleLen(id, n.contentLen)
	}

	e.insert(n)

	return nil
}

// EncodeNextPreencoded appends a node whose bytes are already fully encoded
// (tag, length and value already laid out); Finish copies them verbatim and
// its size is known immediately, so it always contributes to its parent's
// children-total-size at insertion time.
func (e *Encoder) EncodeNextPreencoded(encoded []byte) {
	n := &node{preencoded: encoded, contentLen: len(encoded)}
	e.insert(n)
}

func (e *Encoder) insert(n *node) {
	switch {
	case e.root == nil:
		e.root = n

	case e.current.isConstructed() && e.current.children == nil:
		n.parent = e.current
		e.current.children = n
		e.current.lastChild = n

	default:
		n.parent = e.current.parent
		e.current.siblings = n
		if e.current.parent != nil {
			e.current.parent.lastChild = n
		}
	}

	e.current = n

	if n.parent == nil {
		return
	}

	if n.preencoded != nil {
		n.parent.childrenSize += len(n.preencoded)
		return
	}

	if !n.isConstructed() {
		n.parent.childrenSize += n.preambleLen + n.contentLen
	}
}

// EndSeq implements endseq, spec.md §4.6: moves the cursor up to the
// current node's parent, finalizes the parent's preamble length from its
// accumulated children-total-size, and propagates (children-size +
// preamble-len) up into the grandparent's running total.
func (e *Encoder) EndSeq() error {
	if e.current == nil || e.current.parent == nil {
		return errs.ErrSkipBeforeNext
	}

	e.current = e.current.parent
	e.current.contentLen = e.current.childrenSize
	e.current.preambleLen = calcPreambleLen(e.current.identifier, e.current.childrenSize)

	if e.current.parent != nil {
		e.current.parent.childrenSize += e.current.childrenSize + e.current.preambleLen
	}

	return nil
}

// EndSeqRepeat calls EndSeq n times, stopping at the first error.
func (e *Encoder) EndSeqRepeat(n int) error {
	for i := 0; i < n; i++ {
		if err := e.EndSeq(); err != nil {
			return err
		}
	}

	return nil
}

func calcPreambleLen(id uint32, contentLen int) int {
	return identifierLen(id) + lengthLen(contentLen)
}

func identifierLen(id uint32) int {
	if id <= 30 {
		return 1
	}

	n := 1
	v := id
	for v > 0 {
		n++
		v >>= 7
	}

	return n
}

// lengthLen mirrors ber.EncodeLength's byte count exactly, including its
// spec.md §9 long-form-overflow leading zero pad, so the preamble length
// reserved here always matches what Finish's EncodeLength call emits.
func lengthLen(length int) int {
	return len(ber.EncodeLength(nil, length))
}

// Finish implements finish, spec.md §4.6: depth-first, encode each node's
// preamble using its now-known content length, then its value bytes (or,
// for a constructed node, its children in insertion order). The result is
// kept on the result free-list; pair with ReleaseResult/ReleaseResults.
func (e *Encoder) Finish() ([]byte, error) {
	var out []byte

	for n := e.root; n != nil; n = n.siblings {
		var err error
		out, err = emit(out, n)
		if err != nil {
			return nil, err
		}
	}

	e.resultMu.Lock()
	e.results = append(e.results, out)
	e.resultMu.Unlock()

	return out, nil
}

func emit(dst []byte, n *node) ([]byte, error) {
	if n.preencoded != nil {
		return append(dst, n.preencoded...), nil
	}

	dst = ber.EncodeIdentifier(dst, n.class, n.identifier)
	dst = ber.EncodeLength(dst, n.contentLen)

	if n.isConstructed() {
		for c := n.children; c != nil; c = c.siblings {
			var err error
			dst, err = emit(dst, c)
			if err != nil {
				return nil, err
			}
		}

		return dst, nil
	}

	return append(dst, n.value...), nil
}

// ReleaseResult returns a Finish result to the encoder's free-list
// bookkeeping. Safe for concurrent use: the free-list is mutex-protected so
// one goroutine may produce results while another releases them, matching
// spec.md §5's "result free-list is protected by a mutex".
func (e *Encoder) ReleaseResult(result []byte) {
	e.resultMu.Lock()
	defer e.resultMu.Unlock()

	for i, r := range e.results {
		if len(r) > 0 && len(result) > 0 && &r[0] == &result[0] {
			e.results = append(e.results[:i], e.results[i+1:]...)
			return
		}
	}
}

// ReleaseResults releases every outstanding result.
func (e *Encoder) ReleaseResults() {
	e.resultMu.Lock()
	defer e.resultMu.Unlock()

	e.results = nil
}

// stage translates value per encode-as, spec.md §4.2. Most semantic types
// pass their already-encoded bytes through unchanged; Boolean and Null are
// normalized to their canonical forms since callers pass a logical bool/nil
// rather than a pre-encoded byte.
func stage(encodeAs schema.SemanticType, value []byte) ([]byte, error) {
	switch encodeAs {
	case schema.Null, schema.Sequence, schema.Set:
		return nil, nil

	case schema.Boolean:
		if len(value) == 0 {
			return nil, errs.ErrUnsupportedEncodeAs
		}
		if value[0] == 0 {
			return []byte{0x00}, nil
		}

		return []byte{0xff}, nil

	default:
		return value, nil
	}
}
