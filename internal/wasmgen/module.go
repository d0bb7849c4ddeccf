package wasmgen

import "slices"

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

func (ft FuncType) equal(o FuncType) bool {
	return slices.Equal(ft.Params, o.Params) && slices.Equal(ft.Results, o.Results)
}

// Import is a function import.
type Import struct {
	Module  string
	Name    string
	TypeIdx uint32
}

// Export is a function or memory export.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// Limits bounds a memory in 64 KiB pages.
type Limits struct {
	Max *uint32
	Min uint32
}

// Module is a single-memory module under construction. All imports must be
// added before the first local function.
type Module struct {
	Memory  *Limits
	Types   []FuncType
	Imports []Import
	Exports []Export
	funcs   []*Func
	typeIdx []uint32
}

// NewModule returns an empty module.
func NewModule() *Module {
	return &Module{}
}

// AddType returns the index of ft, adding it if not yet present.
func (m *Module) AddType(ft FuncType) uint32 {
	for i, t := range m.Types {
		if t.equal(ft) {
			return uint32(i)
		}
	}
	m.Types = append(m.Types, ft)
	return uint32(len(m.Types) - 1)
}

// ImportFunc adds a function import and returns its function index.
func (m *Module) ImportFunc(module, name string, ft FuncType) uint32 {
	if len(m.funcs) > 0 {
		panic("wasmgen: import added after local functions")
	}
	m.Imports = append(m.Imports, Import{Module: module, Name: name, TypeIdx: m.AddType(ft)})
	return uint32(len(m.Imports) - 1)
}

// AddFunc adds a local function and returns its function index.
func (m *Module) AddFunc(f *Func) uint32 {
	m.funcs = append(m.funcs, f)
	m.typeIdx = append(m.typeIdx, m.AddType(f.Type))
	return uint32(len(m.Imports) + len(m.funcs) - 1)
}

// ExportFunc exports function idx under name.
func (m *Module) ExportFunc(name string, idx uint32) {
	m.Exports = append(m.Exports, Export{Name: name, Kind: KindFunc, Idx: idx})
}

// SetMemory declares memory 0 and exports it under name.
func (m *Module) SetMemory(name string, limits Limits) {
	m.Memory = &limits
	m.Exports = append(m.Exports, Export{Name: name, Kind: KindMemory, Idx: 0})
}

// Encode encodes the module to WebAssembly binary format.
func (m *Module) Encode() []byte {
	w := NewWriter()

	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)

	if len(m.Types) > 0 {
		sec := NewWriter()
		sec.WriteU32(uint32(len(m.Types)))
		for _, ft := range m.Types {
			sec.Byte(FuncTypeByte)
			writeValTypes(sec, ft.Params)
			writeValTypes(sec, ft.Results)
		}
		writeSection(w, SectionType, sec.Bytes())
	}

	if len(m.Imports) > 0 {
		sec := NewWriter()
		sec.WriteU32(uint32(len(m.Imports)))
		for _, imp := range m.Imports {
			sec.WriteName(imp.Module)
			sec.WriteName(imp.Name)
			sec.Byte(KindFunc)
			sec.WriteU32(imp.TypeIdx)
		}
		writeSection(w, SectionImport, sec.Bytes())
	}

	if len(m.funcs) > 0 {
		sec := NewWriter()
		sec.WriteU32(uint32(len(m.typeIdx)))
		for _, idx := range m.typeIdx {
			sec.WriteU32(idx)
		}
		writeSection(w, SectionFunction, sec.Bytes())
	}

	if m.Memory != nil {
		sec := NewWriter()
		sec.WriteU32(1)
		writeLimits(sec, *m.Memory)
		writeSection(w, SectionMemory, sec.Bytes())
	}

	if len(m.Exports) > 0 {
		sec := NewWriter()
		sec.WriteU32(uint32(len(m.Exports)))
		for _, exp := range m.Exports {
			sec.WriteName(exp.Name)
			sec.Byte(exp.Kind)
			sec.WriteU32(exp.Idx)
		}
		writeSection(w, SectionExport, sec.Bytes())
	}

	if len(m.funcs) > 0 {
		sec := NewWriter()
		sec.WriteU32(uint32(len(m.funcs)))
		for _, f := range m.funcs {
			body := f.encodeBody()
			sec.WriteU32(uint32(len(body)))
			sec.WriteBytes(body)
		}
		writeSection(w, SectionCode, sec.Bytes())
	}

	return w.Bytes()
}

func writeSection(w *Writer, id byte, data []byte) {
	w.Byte(id)
	w.WriteU32(uint32(len(data)))
	w.WriteBytes(data)
}

func writeValTypes(w *Writer, types []ValType) {
	w.WriteU32(uint32(len(types)))
	for _, t := range types {
		w.Byte(byte(t))
	}
}

func writeLimits(w *Writer, l Limits) {
	var flags byte
	if l.Max != nil {
		flags |= LimitsHasMax
	}
	w.Byte(flags)
	w.WriteU32(l.Min)
	if l.Max != nil {
		w.WriteU32(*l.Max)
	}
}
