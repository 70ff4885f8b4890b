// Copyright (c) 2025 Neomantra Corp

package nrbf

// binaryArrayShape is the BinaryArrayTypeEnum carried by a BinaryArray
// record, per spec.md section 4.6.
type binaryArrayShape byte

const (
	shapeSingle            binaryArrayShape = 0
	shapeJagged            binaryArrayShape = 1
	shapeRectangular       binaryArrayShape = 2
	shapeSingleOffset      binaryArrayShape = 3
	shapeJaggedOffset      binaryArrayShape = 4
	shapeRectangularOffset binaryArrayShape = 5
)

func (s binaryArrayShape) hasLowerBounds() bool {
	return s == shapeSingleOffset || s == shapeJaggedOffset || s == shapeRectangularOffset
}

func (s binaryArrayShape) isRectangular() bool {
	return s == shapeRectangular || s == shapeRectangularOffset
}

// readArraySinglePrimitive decodes tag 15: a homogeneous primitive array.
// Every element is read directly (step 1 of the member-slot reader); no
// element can be null or a reference, since there is no per-element
// record wrapper.
func (d *Decoder) readArraySinglePrimitive() (anyRecord, error) {
	id, err := d.cur.readI32LE()
	if err != nil {
		return anyRecord{}, err
	}
	length, err := d.cur.readI32LE()
	if err != nil {
		return anyRecord{}, err
	}
	kb, err := d.cur.readU8()
	if err != nil {
		return anyRecord{}, err
	}
	kind := PrimitiveKind(kb)

	values, err := d.fillSlots(id, indexLocatorAt(), int(length), memberRule{kind: rulePrimitive, primitive: kind})
	if err != nil {
		return anyRecord{}, err
	}

	if kind == PrimitiveU8 {
		raw := make([]byte, len(values))
		for i, v := range values {
			raw[i] = v.U8
		}
		return anyRecord{kind: arValue, objectID: id, value: Value{Kind: KindArray, RawBytes: raw}}, nil
	}
	return anyRecord{kind: arValue, objectID: id, value: Value{Kind: KindArray, Array: values}}, nil
}

// readArraySingleSlotted decodes tags 16 (ArraySingleObject), 17
// (ArraySingleString), and 20 (ArrayOfType, decoded identically to 17).
func (d *Decoder) readArraySingleSlotted(isString bool) (anyRecord, error) {
	id, err := d.cur.readI32LE()
	if err != nil {
		return anyRecord{}, err
	}
	length, err := d.cur.readI32LE()
	if err != nil {
		return anyRecord{}, err
	}
	rule := memberRule{kind: ruleObject}
	if isString {
		rule = memberRule{kind: ruleString}
	}
	values, err := d.fillSlots(id, indexLocatorAt(), int(length), rule)
	if err != nil {
		return anyRecord{}, err
	}
	return anyRecord{kind: arValue, objectID: id, value: Value{Kind: KindArray, Array: values}}, nil
}

// readBinaryArray decodes tag 7: single, jagged, or rectangular arrays,
// optionally with (ignored) non-zero lower bounds.
func (d *Decoder) readBinaryArray() (anyRecord, error) {
	id, err := d.cur.readI32LE()
	if err != nil {
		return anyRecord{}, err
	}
	shapeByte, err := d.cur.readU8()
	if err != nil {
		return anyRecord{}, err
	}
	shape := binaryArrayShape(shapeByte)
	rank, err := d.cur.readI32LE()
	if err != nil {
		return anyRecord{}, err
	}
	lengths := make([]int32, rank)
	for i := range lengths {
		lengths[i], err = d.cur.readI32LE()
		if err != nil {
			return anyRecord{}, err
		}
	}
	if shape.hasLowerBounds() {
		for i := int32(0); i < rank; i++ {
			if _, err := d.cur.readI32LE(); err != nil { // lower bound, discarded
				return anyRecord{}, err
			}
		}
	}
	elemTypeByte, err := d.cur.readU8()
	if err != nil {
		return anyRecord{}, err
	}
	rule, err := d.readArrayElementDetail(BinaryType(elemTypeByte))
	if err != nil {
		return anyRecord{}, err
	}

	total := int64(1)
	for _, l := range lengths {
		total *= int64(l)
	}
	if total < 0 || total > (1<<31) {
		return anyRecord{}, offsetError(d.cur.tell(), ErrOverflow)
	}

	values, err := d.fillSlots(id, indexLocatorAt(), int(total), rule)
	if err != nil {
		return anyRecord{}, err
	}

	if shape.isRectangular() {
		return anyRecord{kind: arValue, objectID: id, value: Value{Kind: KindNdArray, Nd: NdArray{Lengths: lengths, Elements: values}}}, nil
	}
	// Single and Jagged both decode as a dense 1-D sequence: the element
	// slot reader already handles nested array records transparently for
	// the jagged case.
	return anyRecord{kind: arValue, objectID: id, value: Value{Kind: KindArray, Array: values}}, nil
}

// readArrayElementDetail reads a BinaryArray's element BinaryType detail
// and returns the member-slot rule it implies.
func (d *Decoder) readArrayElementDetail(bt BinaryType) (memberRule, error) {
	switch bt {
	case BinaryTypePrimitive:
		kb, err := d.cur.readU8()
		if err != nil {
			return memberRule{}, err
		}
		return memberRule{kind: rulePrimitive, primitive: PrimitiveKind(kb)}, nil
	case BinaryTypeString:
		return memberRule{kind: ruleString}, nil
	case BinaryTypeObject:
		return memberRule{kind: ruleObject}, nil
	case BinaryTypeSystemClass:
		if _, err := readLPString(d.cur); err != nil {
			return memberRule{}, err
		}
		return memberRule{kind: ruleClassRef}, nil
	case BinaryTypeClass:
		if _, err := readLPString(d.cur); err != nil {
			return memberRule{}, err
		}
		if _, err := d.cur.readI32LE(); err != nil {
			return memberRule{}, err
		}
		return memberRule{kind: ruleClassRef}, nil
	case BinaryTypeObjectArray:
		return memberRule{kind: ruleObjectArray}, nil
	case BinaryTypeStringArray:
		return memberRule{kind: ruleStringArray}, nil
	case BinaryTypePrimitiveArray:
		kb, err := d.cur.readU8()
		if err != nil {
			return memberRule{}, err
		}
		return memberRule{kind: rulePrimitiveArray, primitive: PrimitiveKind(kb)}, nil
	default:
		return memberRule{}, offsetError(d.cur.tell(), unknownBinaryTypeError(bt))
	}
}

func indexLocatorAt() locatorAtFunc {
	return func(i int) Locator { return indexLocator(i) }
}
