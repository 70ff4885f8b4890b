// Copyright (c) 2025 Neomantra Corp

package nrbf_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"testing"

	"github.com/nrbf-go/nrbf-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestNrbf(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "nrbf-go suite")
}

// streamBuilder assembles a raw NRBF byte stream by hand, record by
// record, for the concrete scenarios this package's decoder must handle.
type streamBuilder struct {
	buf bytes.Buffer
}

func (b *streamBuilder) u8(v byte)   { b.buf.WriteByte(v) }
func (b *streamBuilder) i32(v int32) { binary.Write(&b.buf, binary.LittleEndian, v) }
func (b *streamBuilder) i64(v int64) { binary.Write(&b.buf, binary.LittleEndian, v) }
func (b *streamBuilder) f64(v float64) {
	binary.Write(&b.buf, binary.LittleEndian, math.Float64bits(v))
}

func (b *streamBuilder) u64(v uint64) { binary.Write(&b.buf, binary.LittleEndian, v) }

func (b *streamBuilder) lpString(s string) {
	n := uint32(len(s))
	for {
		c := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			b.u8(c | 0x80)
		} else {
			b.u8(c)
			break
		}
	}
	b.buf.WriteString(s)
}

func (b *streamBuilder) header(rootID int32) {
	b.u8(0) // tagHeader
	b.i32(-1)
	b.i32(rootID)
	b.i32(-1)
	b.i32(1)
	b.i32(0)
}

func (b *streamBuilder) messageEnd() { b.u8(11) }

func (b *streamBuilder) binaryObjectString(id int32, s string) {
	b.u8(6)
	b.i32(id)
	b.lpString(s)
}

func (b *streamBuilder) arraySingleInt32(id int32, values []int32) {
	b.u8(15)
	b.i32(id)
	b.i32(int32(len(values)))
	b.u8(8) // PrimitiveI32
	for _, v := range values {
		b.i32(v)
	}
}

// arraySingleDateTime writes an ArraySinglePrimitive of raw DateTime wire
// values (top 2 bits kind, bottom 62 bits tick field, not yet reinterpreted).
func (b *streamBuilder) arraySingleDateTime(id int32, raw []uint64) {
	b.u8(15)
	b.i32(id)
	b.i32(int32(len(raw)))
	b.u8(13) // PrimitiveDateTime
	for _, v := range raw {
		b.u64(v)
	}
}

func (b *streamBuilder) arraySingleObject(id int32, length int32) {
	b.u8(16)
	b.i32(id)
	b.i32(length)
}

func (b *streamBuilder) arraySingleString(id int32, length int32) {
	b.u8(17)
	b.i32(id)
	b.i32(length)
}

// arraySingleReservedKind writes an ArraySinglePrimitive whose element
// kind is the reserved/unused primitive tag 4.
func (b *streamBuilder) arraySingleReservedKind(id int32, length int32) {
	b.u8(15)
	b.i32(id)
	b.i32(length)
	b.u8(4) // reserved primitive kind
}

func (b *streamBuilder) memberReference(targetID int32) {
	b.u8(9)
	b.i32(targetID)
}

func (b *streamBuilder) objectNullMultiple(count int32) {
	b.u8(14)
	b.i32(count)
}

// systemClassObjectMembers writes tag 4 (SystemClassWithMembersAndTypes):
// no LibraryId field, every
// member typed BinaryTypeObject (2) so its slot reads one generic record.
func (b *streamBuilder) systemClassObjectMembers(id int32, className string, members []string) {
	b.u8(4)
	b.i32(id)
	b.lpString(className)
	b.i32(int32(len(members)))
	for _, m := range members {
		b.lpString(m)
	}
	for range members {
		b.u8(2) // BinaryTypeObject
	}
}

// classObjectArrayMembers writes tag 5 (ClassWithMembersAndTypes): every
// member typed
// BinaryTypeObjectArray (5), followed by a (discarded) LibraryId.
func (b *streamBuilder) classObjectArrayMembers(id int32, className string, members []string) {
	b.u8(5)
	b.i32(id)
	b.lpString(className)
	b.i32(int32(len(members)))
	for _, m := range members {
		b.lpString(m)
	}
	for range members {
		b.u8(5) // BinaryTypeObjectArray
	}
	b.i32(0) // LibraryId
}

func (b *streamBuilder) binaryArrayRectangular2x3Double(id int32, values [6]float64) {
	b.u8(7)
	b.i32(id)
	b.u8(2) // shapeRectangular
	b.i32(2)
	b.i32(2)
	b.i32(3)
	b.u8(0) // BinaryTypePrimitive
	b.u8(6) // PrimitiveF64
	for _, v := range values {
		b.f64(v)
	}
}

var _ = Describe("Decode", func() {
	It("decodes a bare string root (scenario 1)", func() {
		var b streamBuilder
		b.header(1)
		b.binaryObjectString(1, "hello")
		b.messageEnd()

		v, err := nrbf.Decode(bytes.NewReader(b.buf.Bytes()))
		Expect(err).To(BeNil())
		Expect(v.Kind).To(Equal(nrbf.KindString))
		Expect(v.Str).To(Equal("hello"))
	})

	It("decodes an Int32 array root (scenario 2)", func() {
		var b streamBuilder
		b.header(1)
		b.arraySingleInt32(1, []int32{7, -3, 1000000})
		b.messageEnd()

		v, err := nrbf.Decode(bytes.NewReader(b.buf.Bytes()))
		Expect(err).To(BeNil())
		Expect(v.Kind).To(Equal(nrbf.KindArray))
		Expect(v.Array).To(HaveLen(3))
		Expect(v.Array[0].I32).To(Equal(int32(7)))
		Expect(v.Array[1].I32).To(Equal(int32(-3)))
		Expect(v.Array[2].I32).To(Equal(int32(1000000)))
	})

	It("resolves a forward reference (scenario 3)", func() {
		var b streamBuilder
		b.header(2)
		b.systemClassObjectMembers(2, "Holder", []string{"x"})
		b.memberReference(3)
		b.binaryObjectString(3, "late")
		b.messageEnd()

		v, err := nrbf.Decode(bytes.NewReader(b.buf.Bytes()))
		Expect(err).To(BeNil())
		Expect(v.Kind).To(Equal(nrbf.KindObject))
		Expect(v.Object["x"].Kind).To(Equal(nrbf.KindString))
		Expect(v.Object["x"].Str).To(Equal("late"))
	})

	It("expands an ObjectNullMultiple run to the full array length (scenario 4)", func() {
		var b streamBuilder
		b.header(1)
		b.arraySingleObject(1, 5)
		b.objectNullMultiple(5)
		b.messageEnd()

		v, err := nrbf.Decode(bytes.NewReader(b.buf.Bytes()))
		Expect(err).To(BeNil())
		Expect(v.Kind).To(Equal(nrbf.KindArray))
		Expect(v.Array).To(HaveLen(5))
		for _, e := range v.Array {
			Expect(e.Kind).To(Equal(nrbf.KindNull))
		}
	})

	It("decodes a rectangular 2x3 double array (scenario 5)", func() {
		var b streamBuilder
		b.header(1)
		b.binaryArrayRectangular2x3Double(1, [6]float64{1, 2, 3, 4, 5, 6})
		b.messageEnd()

		v, err := nrbf.Decode(bytes.NewReader(b.buf.Bytes()))
		Expect(err).To(BeNil())
		Expect(v.Kind).To(Equal(nrbf.KindNdArray))
		Expect(v.Nd.Lengths).To(Equal([]int32{2, 3}))
		Expect(v.Nd.Elements).To(HaveLen(6))
		Expect(v.Nd.Elements[0].F64).To(Equal(1.0))
		Expect(v.Nd.Elements[5].F64).To(Equal(6.0))
	})

	Context("Hashtable conversion (scenario 6)", func() {
		It("converts distinct keys to an ordered map", func() {
			var b streamBuilder
			b.header(1)
			b.classObjectArrayMembers(1, "System.Collections.Hashtable", []string{"Keys", "Values"})
			b.arraySingleString(10, 2)
			b.binaryObjectString(11, "a")
			b.binaryObjectString(12, "b")
			b.arraySingleInt32(13, []int32{1, 2})
			b.messageEnd()

			v, err := nrbf.Decode(bytes.NewReader(b.buf.Bytes()))
			Expect(err).To(BeNil())
			Expect(v.Kind).To(Equal(nrbf.KindMap))
			Expect(v.MapEntries).To(HaveLen(2))
			Expect(v.MapEntries[0].Key.Str).To(Equal("a"))
			Expect(v.MapEntries[0].Value.I32).To(Equal(int32(1)))
			Expect(v.MapEntries[1].Key.Str).To(Equal("b"))
			Expect(v.MapEntries[1].Value.I32).To(Equal(int32(2)))
		})

		It("leaves a duplicate-key Hashtable as the opaque class (P7)", func() {
			var b streamBuilder
			b.header(1)
			b.classObjectArrayMembers(1, "System.Collections.Hashtable", []string{"Keys", "Values"})
			b.arraySingleString(10, 2)
			b.binaryObjectString(11, "a")
			b.binaryObjectString(12, "a")
			b.arraySingleInt32(13, []int32{1, 2})
			b.messageEnd()

			v, err := nrbf.Decode(bytes.NewReader(b.buf.Bytes()))
			Expect(err).To(BeNil())
			Expect(v.Kind).To(Equal(nrbf.KindObject))
			Expect(v.ObjectClass).To(Equal("System.Collections.Hashtable"))
			Expect(v.Object["Keys"].Kind).To(Equal(nrbf.KindArray))
			Expect(v.Object["Values"].Kind).To(Equal(nrbf.KindArray))
		})
	})

	It("reinterprets a DateTime's 62-bit tick field as two's complement", func() {
		var b streamBuilder
		b.header(1)
		b.arraySingleDateTime(1, []uint64{
			864000000000,        // bit 61 clear: ordinary day-1 tick count
			3000000000000000000, // bit 61 set: reinterprets negative, saturates to 0
		})
		b.messageEnd()

		v, err := nrbf.Decode(bytes.NewReader(b.buf.Bytes()))
		Expect(err).To(BeNil())
		Expect(v.Kind).To(Equal(nrbf.KindArray))
		Expect(v.Array).To(HaveLen(2))
		Expect(v.Array[0].DateTime.Ticks).To(Equal(int64(864000000000)))
		Expect(v.Array[1].DateTime.Ticks).To(Equal(int64(0)))
	})

	It("disambiguates colliding member names as name, name2, name3", func() {
		var b streamBuilder
		b.header(2)
		b.systemClassObjectMembers(2, "Dup", []string{"x", "x", "x"})
		b.binaryObjectString(3, "first")
		b.binaryObjectString(4, "second")
		b.binaryObjectString(5, "third")
		b.messageEnd()

		v, err := nrbf.Decode(bytes.NewReader(b.buf.Bytes()))
		Expect(err).To(BeNil())
		Expect(v.ObjectMembers).To(Equal([]string{"x", "x2", "x3"}))
		Expect(v.Object["x"].Str).To(Equal("first"))
		Expect(v.Object["x2"].Str).To(Equal("second"))
		Expect(v.Object["x3"].Str).To(Equal("third"))
	})

	It("classifies the reserved primitive kind 4 as unsupported", func() {
		var b streamBuilder
		b.header(1)
		b.arraySingleReservedKind(1, 1)
		b.messageEnd()

		_, err := nrbf.Decode(bytes.NewReader(b.buf.Bytes()))
		Expect(err).To(MatchError(nrbf.ErrUnsupported))
	})

	It("rejects a stream with a bad header", func() {
		var b streamBuilder
		b.u8(0)
		b.i32(-1)
		b.i32(0) // RootId == 0 is invalid
		b.i32(-1)
		b.i32(1)
		b.i32(0)

		_, err := nrbf.Decode(bytes.NewReader(b.buf.Bytes()))
		Expect(err).To(MatchError(nrbf.ErrBadHeader))
	})

	It("reports a dangling reference", func() {
		var b streamBuilder
		b.header(2)
		b.systemClassObjectMembers(2, "Holder", []string{"x"})
		b.memberReference(99)
		b.messageEnd()

		_, err := nrbf.Decode(bytes.NewReader(b.buf.Bytes()))
		Expect(err).To(MatchError(nrbf.ErrDanglingRef))
	})
})

var _ = Describe("Overwrite facility", func() {
	It("patches a fixed-width element in place and leaves a second identical write idempotent (P6)", func() {
		var b streamBuilder
		b.header(1)
		b.arraySingleInt32(1, []int32{7, -3, 1000000})
		b.messageEnd()

		f, err := os.CreateTemp("", "nrbf-overwrite-*.bin")
		Expect(err).To(BeNil())
		defer os.Remove(f.Name())
		defer f.Close()
		_, err = f.Write(b.buf.Bytes())
		Expect(err).To(BeNil())
		_, err = f.Seek(0, 0)
		Expect(err).To(BeNil())

		d := nrbf.NewDecoder(f, true)
		root, err := d.Read()
		Expect(err).To(BeNil())
		Expect(root.Array[1].I32).To(Equal(int32(-3)))

		Expect(d.IsWritable(1, nrbf.IndexLocator(1))).To(BeTrue())
		Expect(d.Write(1, nrbf.IndexLocator(1), nrbf.Value{Kind: nrbf.KindI32, I32: 42})).To(BeNil())
		Expect(d.Write(1, nrbf.IndexLocator(1), nrbf.Value{Kind: nrbf.KindI32, I32: 42})).To(BeNil())

		f.Seek(0, 0)
		again, err := nrbf.Decode(f)
		Expect(err).To(BeNil())
		Expect(again.Array[1].I32).To(Equal(int32(42)))
		Expect(again.Array[0].I32).To(Equal(int32(7)))
		Expect(again.Array[2].I32).To(Equal(int32(1000000)))
	})
})
