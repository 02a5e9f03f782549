// Package format describes how each mode of a tensor is materialized.
//
// A Format is an ordered list of per-mode encodings. Each mode carries a
// ModeKind selecting the materialization strategy (Dense, Sparse or Fixed)
// and the integer types used for that mode's pos and idx arrays. The packer
// consults the format to decide which index arrays to emit and at which
// widths; generated kernels rely on those widths matching the indexing
// arithmetic they emit.
package format

import "strings"

// DefaultIndexType is the index type used by the convenience constructors
// for both pos and idx arrays.
const DefaultIndexType = TypeInt32

// Mode describes the materialization of a single tensor mode.
type Mode struct {
	// Kind selects the materialization strategy for this mode.
	Kind ModeKind
	// PosType is the integer type of this mode's pos array.
	PosType IndexType
	// IdxType is the integer type of this mode's idx array.
	IdxType IndexType
}

// NewMode creates a Mode with the default Int32 pos and idx types.
func NewMode(kind ModeKind) Mode {
	return Mode{Kind: kind, PosType: DefaultIndexType, IdxType: DefaultIndexType}
}

func (m Mode) String() string {
	if m.PosType == DefaultIndexType && m.IdxType == DefaultIndexType {
		return m.Kind.String()
	}

	return m.Kind.String() + "(" + m.PosType.String() + "," + m.IdxType.String() + ")"
}

// Format is an immutable ordered list of per-mode encodings. The order of
// the format must equal the order of the coordinate stream it packs.
type Format struct {
	modes []Mode
}

// New creates a Format from mode kinds, using Int32 pos and idx types for
// every mode.
func New(kinds ...ModeKind) Format {
	modes := make([]Mode, len(kinds))
	for i, kind := range kinds {
		modes[i] = NewMode(kind)
	}

	return Format{modes: modes}
}

// NewTyped creates a Format from fully-specified modes.
func NewTyped(modes ...Mode) Format {
	f := Format{modes: make([]Mode, len(modes))}
	copy(f.modes, modes)

	return f
}

// CSR returns the compressed sparse row matrix format: a dense outer mode
// over a sparse inner mode.
func CSR() Format {
	return New(Dense, Sparse)
}

// DCSR returns the doubly compressed sparse row matrix format: sparse in
// both modes.
func DCSR() Format {
	return New(Sparse, Sparse)
}

// CSF returns the compressed sparse fiber format of the given order: sparse
// in every mode.
func CSF(order int) Format {
	kinds := make([]ModeKind, order)
	for i := range kinds {
		kinds[i] = Sparse
	}

	return New(kinds...)
}

// DenseFormat returns the fully dense format of the given order.
func DenseFormat(order int) Format {
	kinds := make([]ModeKind, order)
	for i := range kinds {
		kinds[i] = Dense
	}

	return New(kinds...)
}

// Order returns the number of modes in the format.
func (f Format) Order() int {
	return len(f.modes)
}

// Mode returns the encoding of mode i.
func (f Format) Mode(i int) Mode {
	return f.modes[i]
}

// Modes returns a copy of the per-mode encodings.
func (f Format) Modes() []Mode {
	modes := make([]Mode, len(f.modes))
	copy(modes, f.modes)

	return modes
}

// Equal reports whether two formats have identical mode encodings.
func (f Format) Equal(other Format) bool {
	if len(f.modes) != len(other.modes) {
		return false
	}
	for i, m := range f.modes {
		if m != other.modes[i] {
			return false
		}
	}

	return true
}

func (f Format) String() string {
	parts := make([]string, len(f.modes))
	for i, m := range f.modes {
		parts[i] = m.String()
	}

	return "[" + strings.Join(parts, ",") + "]"
}
