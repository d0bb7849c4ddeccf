// Package lower emits WebAssembly for record field access and record array
// indexing.
//
// LowerFieldAccess turns (record type, field, base address, mode) into a
// load or store whose memarg offset is the field offset and whose width is
// exactly the field size. LowerIndex computes base + index * size for an
// array of records; LowerColumnIndex adds the field offset so a field can
// be indexed as its own column. Reading a field through LowerIndex and
// LowerFieldAccess addresses the same bytes as LowerColumnIndex followed by
// LowerScalarAccess.
//
// Field templates are memoized per *record.Type, so types interned in one
// registry share them. Index lowering keeps no state.
package lower
