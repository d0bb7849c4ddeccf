package wasmgen

// Module preamble.
const (
	Magic   uint32 = 0x6D736100
	Version uint32 = 0x01
)

// Section IDs in the order they must appear.
const (
	SectionType     byte = 1
	SectionImport   byte = 2
	SectionFunction byte = 3
	SectionMemory   byte = 5
	SectionExport   byte = 7
	SectionCode     byte = 10
)

// Import/export descriptor kinds.
const (
	KindFunc   byte = 0
	KindMemory byte = 2
)

// ValType is a core value type.
type ValType byte

const (
	ValNone ValType = 0
	ValI32  ValType = 0x7F
	ValI64  ValType = 0x7E
	ValF32  ValType = 0x7D
	ValF64  ValType = 0x7C
)

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	default:
		return "none"
	}
}

const (
	FuncTypeByte  byte = 0x60
	BlockTypeVoid byte = 0x40
	LimitsHasMax  byte = 0x01
)

// Control flow opcodes
const (
	OpUnreachable byte = 0x00
	OpNop         byte = 0x01
	OpBlock       byte = 0x02
	OpLoop        byte = 0x03
	OpIf          byte = 0x04
	OpElse        byte = 0x05
	OpEnd         byte = 0x0B
	OpBr          byte = 0x0C
	OpBrIf        byte = 0x0D
	OpReturn      byte = 0x0F
	OpCall        byte = 0x10
	OpDrop        byte = 0x1A
	OpSelect      byte = 0x1B
)

// Variable opcodes
const (
	OpLocalGet byte = 0x20
	OpLocalSet byte = 0x21
	OpLocalTee byte = 0x22
)

// Memory opcodes
const (
	OpI32Load    byte = 0x28
	OpI64Load    byte = 0x29
	OpF32Load    byte = 0x2A
	OpF64Load    byte = 0x2B
	OpI32Load8S  byte = 0x2C
	OpI32Load8U  byte = 0x2D
	OpI32Load16S byte = 0x2E
	OpI32Load16U byte = 0x2F
	OpI32Store   byte = 0x36
	OpI64Store   byte = 0x37
	OpF32Store   byte = 0x38
	OpF64Store   byte = 0x39
	OpI32Store8  byte = 0x3A
	OpI32Store16 byte = 0x3B
)

// Constant opcodes
const (
	OpI32Const byte = 0x41
	OpI64Const byte = 0x42
	OpF32Const byte = 0x43
	OpF64Const byte = 0x44
)

// Comparison and arithmetic opcodes
const (
	OpI32Eqz byte = 0x45
	OpI32LtU byte = 0x49
	OpI64Eqz byte = 0x50
	OpI64LtS byte = 0x53
	OpI64LtU byte = 0x54
	OpI64GeU byte = 0x5A
	OpI32Add byte = 0x6A
	OpI32Mul byte = 0x6C
	OpI64Add byte = 0x7C
	OpI64Sub byte = 0x7D
	OpI64Mul byte = 0x7E
	OpF64Add byte = 0xA0
	OpF64Sub byte = 0xA1
	OpF64Mul byte = 0xA2
)

// Conversion opcodes
const (
	OpI32WrapI64        byte = 0xA7
	OpI64ExtendI32S     byte = 0xAC
	OpI64ExtendI32U     byte = 0xAD
	OpF32DemoteF64      byte = 0xB6
	OpF64ConvertI64S    byte = 0xB9
	OpF64ConvertI64U    byte = 0xBA
	OpF64PromoteF32     byte = 0xBB
	OpI64ReinterpretF64 byte = 0xBD
)

// 0xFC prefixed opcodes (saturating truncation, bulk memory)
const (
	OpPrefixFC        byte   = 0xFC
	OpI64TruncSatF64S uint32 = 6
	OpI64TruncSatF64U uint32 = 7
	OpMemoryCopy      uint32 = 10
	OpMemoryFill      uint32 = 11
)
