// Top ties one builder's Table, Header and per-kind freelists together,
// grounded on wandder_etsili_top_t.
package etsili

import (
	"github.com/wanderber/wanderber/crypt"
	"github.com/wanderber/wanderber/internal/wbopts"
)

// allRecordKinds is the default record-kind set InitTop initializes
// skeletons and freelists for.
var allRecordKinds = []RecordKind{KindIPCC, KindIPMMCC, KindIPMMIRI, KindIPIRI, KindUMTSCC, KindUMTSIRI}

// Config holds the body-kind set a Top initializes, overridable via
// functional options when a deployment only ever emits a subset of record
// kinds (e.g. a voice-only intercept point never needs umtscc/umtsiri
// skeletons built).
type Config struct {
	kinds []RecordKind
}

// Option configures a Top at construction time.
type Option = wbopts.Option[*Config]

// WithRecordKinds restricts InitTop to building skeletons and freelists for
// only the given kinds, instead of all six. An empty list is ignored.
func WithRecordKinds(kinds ...RecordKind) Option {
	return wbopts.NoError(func(c *Config) {
		if len(kinds) > 0 {
			c.kinds = kinds
		}
	})
}

// Top is one builder instance: the intercept details, the owned preencoded
// table, the shared header prefix, and one freelist per record kind.
type Top struct {
	Details InterceptDetails

	table     *Table
	header    *Header
	skeletons map[RecordKind]*Skeleton
	freelists map[RecordKind]*Freelist

	// Decryption handles this Top's encrypted-container payloads, spec.md
	// §6 "set decryption key" — SetKey delegates to it, per SPEC_FULL.md
	// supplement 3.
	Decryption *crypt.Container
}

// InitTop implements init_top(encoder, intercept-details), spec.md §4.8.
// opts can restrict which record kinds are initialized (WithRecordKinds);
// by default all six are built.
func InitTop(details InterceptDetails, opts ...Option) *Top {
	table := BuildTable(details)
	header := BuildHeader(table)

	cfg := &Config{kinds: allRecordKinds}
	_ = wbopts.Apply(cfg, opts...) // WithRecordKinds never errors

	top := &Top{
		Details:    details,
		table:      table,
		header:     header,
		skeletons:  make(map[RecordKind]*Skeleton),
		freelists:  make(map[RecordKind]*Freelist),
		Decryption: &crypt.Container{},
	}

	for _, kind := range cfg.kinds {
		top.skeletons[kind] = BuildSkeleton(header, table, kind)
		top.freelists[kind] = NewFreelist()
	}

	return top
}

// NewChild implements create_child(parent, body-kind). Panics with a nil
// skeleton/freelist lookup if kind was excluded from InitTop's kind set --
// a caller programmer error, not a runtime condition.
func (t *Top) NewChild(kind RecordKind) *Child {
	return CreateChild(t.header, t.skeletons[kind], t.freelists[kind])
}

// Free implements free_top: releases this Top's reference on every
// body-kind freelist.
func (t *Top) Free() {
	for _, fl := range t.freelists {
		FreeTop(fl)
	}
}

// SetKey implements the exposed "set decryption key" operation, spec.md §6.
func (t *Top) SetKey(key []byte) {
	t.Decryption.SetKey(key)
}
