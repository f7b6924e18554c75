// RecordMeta implements SPEC_FULL.md supplement 2: the "get record
// timestamp, PDU length, LIID, CIN, sequence number" exposed operations
// spec.md §6 names without detailing. Each accessor runs its own
// decoder.DecodeSequenceUntil walk from the top of the buffer, generalizing
// the "sequence-number extraction" design note (spec.md §9) — which
// describes walking until identifier 4 at the PSHeader level, skipping
// constructed siblings by decode_skip — to the other four fields.
package etsili

import (
	"github.com/wanderber/wanderber/decoder"
)

// RecordMeta is the bundle of header fields extractable without a full
// schema-driven dump.
type RecordMeta struct {
	LIID        string
	CIN         int64
	SeqNo       int64
	Seconds     int64
	Microsecs   int64
	PDULength   int
}

// pathTo walks buf from the top of the record down through each identifier
// in path in turn, restarting the walk fresh from the top for every call
// (cheap thanks to the decoder's decode-result cache, spec.md §8 "Cache
// transparency") rather than trying to keep one cursor positioned across
// sibling lookups at the same level.
func pathTo(d *decoder.Decoder, path ...uint32) (*decoder.Item, error) {
	if err := d.Reset(); err != nil {
		return nil, err
	}

	if _, err := d.Next(); err != nil {
		return nil, err
	}

	var cur *decoder.Item
	for _, id := range path {
		found, err := d.DecodeSequenceUntil(id)
		if err != nil {
			return nil, err
		}
		cur = found
	}

	return cur, nil
}

func decodeIntField(buf []byte, path ...uint32) (int64, error) {
	d := decoder.NewDecoder(8)
	d.Attach(buf, false)

	item, err := pathTo(d, path...)
	if err != nil {
		return 0, err
	}

	return intFromContent(d.Value(item))
}

func intFromContent(content []byte) (int64, error) {
	var v int64
	if len(content) == 0 {
		return 0, nil
	}
	if content[0]&0x80 != 0 {
		v = -1
	}
	for _, b := range content {
		v = v<<8 | int64(b)
	}

	return v, nil
}

// ExtractRecordMeta extracts every RecordMeta field from a fully-formed
// pS-PDU buffer in one pass per field. Returns errs.ErrNotFound if
// the buffer lacks a sequence number at the expected position, per spec.md
// §9.
func ExtractRecordMeta(buf []byte) (*RecordMeta, error) {
	d := decoder.NewDecoder(8)
	d.Attach(buf, false)

	liidItem, err := pathTo(d, 1, 1)
	if err != nil {
		return nil, err
	}

	cin, err := decodeIntField(buf, 1, 3, 1)
	if err != nil {
		return nil, err
	}

	seqno, err := decodeIntField(buf, 1, 4)
	if err != nil {
		return nil, err
	}

	sec, err := decodeIntField(buf, 1, 7, 0)
	if err != nil {
		return nil, err
	}

	usec, err := decodeIntField(buf, 1, 7, 1)
	if err != nil {
		return nil, err
	}

	return &RecordMeta{
		LIID:      string(d.Value(liidItem)),
		CIN:       cin,
		SeqNo:     seqno,
		Seconds:   sec,
		Microsecs: usec,
		PDULength: len(buf),
	}, nil
}
