package bytecode

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/mod/semver"

	"github.com/wisp-lang/wisp/internal/isa"
	"github.com/wisp-lang/wisp/internal/items"
	"github.com/wisp-lang/wisp/internal/value"
)

// magic tags the start of an encoded Unit, the wisp analogue of the teacher's
// .obj header word (internal/asm writes a fixed origin word before its code).
const magic = "WISPBC\x00\x01"

// MinSupportedVersion is the oldest Unit.Version this build will load.
const MinSupportedVersion = "v1.0.0"

// CompatibleVersion reports whether a Unit encoded with v can be loaded by
// this build, per spec.md §4.5's forward-compatibility requirement.
func CompatibleVersion(v string) bool {
	if !semver.IsValid(v) {
		return false
	}

	return semver.Compare(v, MinSupportedVersion) >= 0 && semver.Major(v) == semver.Major(FormatVersion)
}

type writer struct {
	w   *bufio.Writer
	err error
}

func (w *writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *writer) u8(b byte) {
	if w.err != nil {
		return
	}

	w.fail(w.w.WriteByte(b))
}

func (w *writer) u32(n int32) {
	if w.err != nil {
		return
	}

	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(n))
	_, err := w.w.Write(buf[:])
	w.fail(err)
}

func (w *writer) u64(n uint64) {
	if w.err != nil {
		return
	}

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	_, err := w.w.Write(buf[:])
	w.fail(err)
}

func (w *writer) bytes(b []byte) {
	w.u32(int32(len(b)))

	if w.err != nil {
		return
	}

	_, err := w.w.Write(b)
	w.fail(err)
}

func (w *writer) str(s string) { w.bytes([]byte(s)) }

func (w *writer) value(v value.Value) {
	w.u8(byte(v.Kind()))

	switch v.Kind() {
	case value.KindUnit:
	case value.KindBool:
		b := byte(0)
		if v.Bool() {
			b = 1
		}

		w.u8(b)
	case value.KindInt:
		w.u64(uint64(v.Int()))
	case value.KindFloat:
		w.u64(math.Float64bits(v.Float()))
	case value.KindChar:
		w.u32(int32(v.Char()))
	case value.KindByte:
		w.u8(v.Byte())
	case value.KindBytes:
		w.bytes(v.ByteSlice())
	case value.KindString:
		w.str(v.Str())
	default:
		w.fail(fmt.Errorf("bytecode: encode: %v is not a constant-pool kind", v.Kind()))
	}
}

// Encode writes u to out in wisp's binary Unit format.
func Encode(out io.Writer, u *Unit) error {
	w := &writer{w: bufio.NewWriter(out)}

	w.fail(func() error { _, err := w.w.WriteString(magic); return err }())
	w.str(u.Version)

	w.u32(int32(len(u.Names)))
	for _, n := range u.Names {
		w.str(n)
	}

	w.u32(int32(len(u.Constants)))
	for _, c := range u.Constants {
		w.value(c)
	}

	w.u32(int32(len(u.Types)))
	for _, t := range u.Types {
		w.u64(uint64(t.Hash))
		w.u32(int32(t.Kind))
		w.u32(int32(len(t.Path)))

		for _, seg := range t.Path {
			w.str(seg)
		}

		w.u32(int32(len(t.Fields)))
		for _, f := range t.Fields {
			w.str(f)
		}

		w.u32(int32(len(t.Variants)))
		for name, disc := range t.Variants {
			w.str(name)
			w.u32(int32(disc))
		}
	}

	w.u32(int32(len(u.Methods)))

	for typeHash, methods := range u.Methods {
		w.u64(uint64(typeHash))
		w.u32(int32(len(methods)))

		for name, h := range methods {
			w.str(name)
			w.u64(uint64(h))
		}
	}

	w.u32(int32(len(u.Funcs)))
	for _, f := range u.Funcs {
		w.str(f.Name)
		w.u64(uint64(f.Hash))
		w.u32(f.Offset)
		w.u32(f.NumParams)
		w.u32(f.NumLocals)
		w.u32(f.EnvSize)

		async := byte(0)
		if f.IsAsync {
			async = 1
		}

		w.u8(async)
	}

	w.u32(int32(len(u.Code)))

	for i, instr := range u.Code {
		w.u32(int32(instr.Op))
		w.u32(instr.A)
		w.u32(instr.B)
		w.u32(instr.C)

		sp := u.Spans[i]
		w.str(sp.File)
		w.u32(int32(sp.Start))
		w.u32(int32(sp.End))
	}

	w.u64(uint64(u.MainHash))

	hasMain := byte(0)
	if u.HasMain {
		hasMain = 1
	}

	w.u8(hasMain)

	if w.err != nil {
		return errors.Wrap(w.err, "bytecode: encode")
	}

	return errors.Wrap(w.w.Flush(), "bytecode: encode")
}

type reader struct {
	r   *bufio.Reader
	err error
}

func (r *reader) fail(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

func (r *reader) u8() byte {
	if r.err != nil {
		return 0
	}

	b, err := r.r.ReadByte()
	r.fail(err)

	return b
}

func (r *reader) u32() int32 {
	if r.err != nil {
		return 0
	}

	var buf [4]byte
	_, err := io.ReadFull(r.r, buf[:])
	r.fail(err)

	return int32(binary.BigEndian.Uint32(buf[:]))
}

func (r *reader) u64() uint64 {
	if r.err != nil {
		return 0
	}

	var buf [8]byte
	_, err := io.ReadFull(r.r, buf[:])
	r.fail(err)

	return binary.BigEndian.Uint64(buf[:])
}

func (r *reader) bytes() []byte {
	n := r.u32()
	if r.err != nil || n == 0 {
		return nil
	}

	buf := make([]byte, n)
	_, err := io.ReadFull(r.r, buf)
	r.fail(err)

	return buf
}

func (r *reader) str() string { return string(r.bytes()) }

func (r *reader) value() value.Value {
	kind := value.Kind(r.u8())

	switch kind {
	case value.KindUnit:
		return value.Unit
	case value.KindBool:
		return value.Bool(r.u8() != 0)
	case value.KindInt:
		return value.Int(int64(r.u64()))
	case value.KindFloat:
		return value.Float(math.Float64frombits(r.u64()))
	case value.KindChar:
		return value.Char(rune(r.u32()))
	case value.KindByte:
		return value.Byte(r.u8())
	case value.KindBytes:
		return value.Bytes(r.bytes())
	case value.KindString:
		return value.String(r.str())
	default:
		r.fail(fmt.Errorf("bytecode: decode: %v is not a constant-pool kind", kind))
		return value.Unit
	}
}

// Decode reads a Unit previously written by Encode, rejecting any encoding
// whose magic header or format version this build doesn't recognize.
func Decode(in io.Reader) (*Unit, error) {
	r := &reader{r: bufio.NewReader(in)}

	var magicBuf [8]byte

	if _, err := io.ReadFull(r.r, magicBuf[:]); err != nil {
		return nil, errors.Wrap(err, "bytecode: decode")
	}

	if string(magicBuf[:]) != magic {
		return nil, errors.New("bytecode: decode: bad magic header")
	}

	version := r.str()
	if r.err == nil && !CompatibleVersion(version) {
		r.fail(fmt.Errorf("bytecode: decode: unsupported unit version %q", version))
	}

	u := &Unit{Version: version}

	for n := r.u32(); n > 0 && r.err == nil; n-- {
		u.Names = append(u.Names, r.str())
	}

	for n := r.u32(); n > 0 && r.err == nil; n-- {
		u.Constants = append(u.Constants, r.value())
	}

	for n := r.u32(); n > 0 && r.err == nil; n-- {
		t := &items.Item{}
		t.Hash = items.Hash(r.u64())
		t.Kind = items.Kind(r.u32())

		for j := r.u32(); j > 0 && r.err == nil; j-- {
			t.Path = append(t.Path, r.str())
		}

		for j := r.u32(); j > 0 && r.err == nil; j-- {
			t.Fields = append(t.Fields, r.str())
		}

		nv := r.u32()
		if nv > 0 {
			t.Variants = make(map[string]uint32, nv)
		}

		for ; nv > 0 && r.err == nil; nv-- {
			name := r.str()
			t.Variants[name] = uint32(r.u32())
		}

		u.Types = append(u.Types, t)
	}

	nm := r.u32()
	if nm > 0 {
		u.Methods = make(map[items.Hash]map[string]items.Hash, nm)
	}

	for ; nm > 0 && r.err == nil; nm-- {
		typeHash := items.Hash(r.u64())
		count := r.u32()
		methods := make(map[string]items.Hash, count)

		for j := count; j > 0 && r.err == nil; j-- {
			name := r.str()
			methods[name] = items.Hash(r.u64())
		}

		u.Methods[typeHash] = methods
	}

	nf := r.u32()
	u.FuncByHash = make(map[items.Hash]int32, nf)

	for i := int32(0); i < nf && r.err == nil; i++ {
		f := FuncMeta{
			Name:      r.str(),
			Hash:      items.Hash(r.u64()),
			Offset:    r.u32(),
			NumParams: r.u32(),
			NumLocals: r.u32(),
			EnvSize:   r.u32(),
			IsAsync:   r.u8() != 0,
		}

		u.Funcs = append(u.Funcs, f)
		u.FuncByHash[f.Hash] = i
	}

	for n := r.u32(); n > 0 && r.err == nil; n-- {
		instr := isa.Instruction{
			Op: isa.Opcode(r.u32()),
			A:  r.u32(),
			B:  r.u32(),
			C:  r.u32(),
		}
		sp := isa.Span{File: r.str(), Start: int(r.u32()), End: int(r.u32())}

		u.Code = append(u.Code, instr)
		u.Spans = append(u.Spans, sp)
	}

	u.MainHash = items.Hash(r.u64())
	u.HasMain = r.u8() != 0

	if r.err != nil {
		return nil, errors.Wrap(r.err, "bytecode: decode")
	}

	return u, nil
}
