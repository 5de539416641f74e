// Package models defines the domain types for Mazkir: the generic
// document and the typed views (habit, task, ledger, day note) that
// interpret a document's metadata. Validation happens here, at the
// boundary where a document is read as a specific kind, not at parse
// time.
package models

import "github.com/mazkir/mazkir/internal/codec"

// Document is one metadata+body file in the vault, identified by its
// path relative to the vault root.
type Document struct {
	Path     string
	Meta     *codec.Metadata
	Body     string
	Checksum string
}

// Clone returns a deep copy whose metadata can be mutated without
// affecting the original snapshot.
func (d *Document) Clone() *Document {
	return &Document{
		Path:     d.Path,
		Meta:     d.Meta.Clone(),
		Body:     d.Body,
		Checksum: d.Checksum,
	}
}
