// Copyright (c) 2025 Neomantra Corp

package nrbf

// recordTag is the one-byte record discriminator read by the dispatcher,
// per spec.md section 4.4 / [MS-NRBF] RecordTypeEnumeration.
type recordTag byte

const (
	tagHeader                         recordTag = 0
	tagClassWithId                    recordTag = 1
	tagSystemClassWithMembers         recordTag = 2
	tagClassWithMembers               recordTag = 3
	tagSystemClassWithMembersAndTypes recordTag = 4
	tagClassWithMembersAndTypes       recordTag = 5
	tagBinaryObjectString             recordTag = 6
	tagBinaryArray                    recordTag = 7
	tagMemberPrimitiveTyped           recordTag = 8
	tagMemberReference                recordTag = 9
	tagObjectNull                     recordTag = 10
	tagMessageEnd                     recordTag = 11
	tagBinaryLibrary                  recordTag = 12
	tagObjectNullMultiple256          recordTag = 13
	tagObjectNullMultiple             recordTag = 14
	tagArraySinglePrimitive           recordTag = 15
	tagArraySingleObject              recordTag = 16
	tagArraySingleString              recordTag = 17
	tagArrayOfType                    recordTag = 20
	tagBinaryMethodCall               recordTag = 21
	tagBinaryMethodReturn             recordTag = 22
)

// anyRecordKind distinguishes what readAnyRecord produced.
type anyRecordKind uint8

const (
	arValue anyRecordKind = iota
	arRef
	arNullRun
	arLibrary
	arMessageEnd
)

// anyRecord is the dispatcher's uniform result: a decoded value (possibly
// carrying its own ObjectId), a pending reference, a run of null slots, an
// interstitial library declaration, or the stream terminator.
type anyRecord struct {
	kind      anyRecordKind
	value     Value
	objectID  int32 // 0 (never a legal NRBF id) when value defines no object
	refTarget int32
	nullCount int

	// Set when value was read as a fixed-width primitive (directly, or via
	// MemberPrimitiveTyped), so the member-slot reader can register an
	// overwrite slot without re-deriving the encoding rule.
	hasFixedPrimitive bool
	fixedOffset       int64
	fixedKind         PrimitiveKind
}

// readAnyRecord reads one tag byte and routes to the matching decoder.
// It is the single entry point used both by the top-level record loop and
// by the member-slot reader, centralizing the BinaryLibrary/ObjectNull
// interstitial handling per the design note in spec.md section 9.
func (d *Decoder) readAnyRecord() (anyRecord, error) {
	pos := d.cur.tell()
	tagByte, err := d.cur.readU8()
	if err != nil {
		return anyRecord{}, err
	}
	tag := recordTag(tagByte)
	switch tag {
	case tagClassWithId:
		return d.readClassWithId()
	case tagSystemClassWithMembers:
		return d.readClassWithMembers(false, false)
	case tagClassWithMembers:
		return d.readClassWithMembers(true, false)
	case tagSystemClassWithMembersAndTypes:
		return d.readClassWithMembers(false, true)
	case tagClassWithMembersAndTypes:
		return d.readClassWithMembers(true, true)
	case tagBinaryObjectString:
		return d.readBinaryObjectString()
	case tagBinaryArray:
		return d.readBinaryArray()
	case tagMemberPrimitiveTyped:
		return d.readMemberPrimitiveTyped()
	case tagMemberReference:
		id, err := d.cur.readI32LE()
		if err != nil {
			return anyRecord{}, err
		}
		return anyRecord{kind: arRef, refTarget: id}, nil
	case tagObjectNull:
		return anyRecord{kind: arValue, value: Null()}, nil
	case tagMessageEnd:
		return anyRecord{kind: arMessageEnd}, nil
	case tagBinaryLibrary:
		if err := d.readBinaryLibrary(); err != nil {
			return anyRecord{}, err
		}
		return anyRecord{kind: arLibrary}, nil
	case tagObjectNullMultiple256:
		n, err := d.cur.readU8()
		if err != nil {
			return anyRecord{}, err
		}
		return anyRecord{kind: arNullRun, nullCount: int(n)}, nil
	case tagObjectNullMultiple:
		n, err := d.cur.readI32LE()
		if err != nil {
			return anyRecord{}, err
		}
		return anyRecord{kind: arNullRun, nullCount: int(n)}, nil
	case tagArraySinglePrimitive:
		return d.readArraySinglePrimitive()
	case tagArraySingleObject:
		return d.readArraySingleSlotted(false)
	case tagArraySingleString:
		return d.readArraySingleSlotted(true)
	case tagArrayOfType:
		// Decoded identically to ArraySingleString; this is flagged as
		// likely-incorrect per [MS-NRBF] in spec.md section 9 (Open
		// Question) and is not silently "fixed" here.
		return d.readArraySingleSlotted(true)
	case tagBinaryMethodCall, tagBinaryMethodReturn:
		return anyRecord{}, offsetError(pos, ErrUnsupported)
	default:
		return anyRecord{}, badTagError(pos, byte(tag))
	}
}

// readAnyRecordSkipLibrary reads records until one that is not an
// interstitial BinaryLibrary declaration.
func (d *Decoder) readAnyRecordSkipLibrary() (anyRecord, error) {
	for {
		r, err := d.readAnyRecord()
		if err != nil {
			return anyRecord{}, err
		}
		if r.kind != arLibrary {
			return r, nil
		}
	}
}

func (d *Decoder) readBinaryLibrary() error {
	if _, err := d.cur.readI32LE(); err != nil { // LibraryId
		return err
	}
	if _, err := readLPString(d.cur); err != nil { // LibraryName
		return err
	}
	return nil
}

func (d *Decoder) readBinaryObjectString() (anyRecord, error) {
	id, err := d.cur.readI32LE()
	if err != nil {
		return anyRecord{}, err
	}
	s, err := readLPString(d.cur)
	if err != nil {
		return anyRecord{}, err
	}
	return anyRecord{kind: arValue, objectID: id, value: Value{Kind: KindString, Str: s}}, nil
}

func (d *Decoder) readMemberPrimitiveTyped() (anyRecord, error) {
	kindByte, err := d.cur.readU8()
	if err != nil {
		return anyRecord{}, err
	}
	kind := PrimitiveKind(kindByte)
	bodyOffset := d.cur.tell()
	v, err := readPrimitive(d.cur, kind)
	if err != nil {
		return anyRecord{}, err
	}
	r := anyRecord{kind: arValue, value: v}
	if _, ok := kind.fixedWidth(); ok {
		r.hasFixedPrimitive = true
		r.fixedOffset = bodyOffset
		r.fixedKind = kind
	}
	return r, nil
}
