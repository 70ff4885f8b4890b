// Copyright (c) 2025 Neomantra Corp

package nrbf

// readClassWithId decodes tag 1: an instance that reuses a previously
// cached class schema, identified by MetadataId.
func (d *Decoder) readClassWithId() (anyRecord, error) {
	objectID, err := d.cur.readI32LE()
	if err != nil {
		return anyRecord{}, err
	}
	metadataID, err := d.cur.readI32LE()
	if err != nil {
		return anyRecord{}, err
	}
	schema, ok := d.classes.lookup(metadataID)
	if !ok {
		return anyRecord{}, offsetError(d.cur.tell(), unknownMetadataIdError(metadataID))
	}
	v, err := d.fillObjectMembers(objectID, schema)
	if err != nil {
		return anyRecord{}, err
	}
	return anyRecord{kind: arValue, objectID: objectID, value: v}, nil
}

// readClassWithMembers decodes tags 2-5: a class definition inline with
// its instance. hasLibraryId distinguishes the "System..." variants
// (tags 2, 4), which have no trailing LibraryId field, from tags 3/5.
// hasTypes distinguishes the "...AndTypes" variants (4, 5), which carry
// a MemberTypeInfo block, from the untyped ones (2, 3).
func (d *Decoder) readClassWithMembers(hasLibraryId, hasTypes bool) (anyRecord, error) {
	objectID, err := d.cur.readI32LE()
	if err != nil {
		return anyRecord{}, err
	}
	className, err := readLPString(d.cur)
	if err != nil {
		return anyRecord{}, err
	}
	memberCount, err := d.cur.readI32LE()
	if err != nil {
		return anyRecord{}, err
	}
	rawMembers := make([]string, memberCount)
	for i := range rawMembers {
		rawMembers[i], err = readLPString(d.cur)
		if err != nil {
			return anyRecord{}, err
		}
	}

	rules := make([]memberRule, memberCount)
	if hasTypes {
		if err := d.readMemberTypeInfo(rules); err != nil {
			return anyRecord{}, err
		}
	}
	// Untyped class records (tags 2, 3) have no MemberTypeInfo; rules stay
	// ruleUntyped (its zero value), per the Open Question in spec.md
	// section 9: a member can still be a primitive via MemberPrimitiveTyped
	// even when the class record itself carries no type map.

	if hasLibraryId {
		if _, err := d.cur.readI32LE(); err != nil { // LibraryId, discarded
			return anyRecord{}, err
		}
	}

	schema := &classSchema{
		objectID:  objectID,
		className: className,
		members:   sanitizeMemberNames(rawMembers),
		rules:     rules,
	}
	d.classes.define(schema)

	v, err := d.fillObjectMembers(objectID, schema)
	if err != nil {
		return anyRecord{}, err
	}
	return anyRecord{kind: arValue, objectID: objectID, value: v}, nil
}

// readMemberTypeInfo reads one BinaryType byte per member, followed by
// each member's type-specific detail, per the table in spec.md section 4.3.
func (d *Decoder) readMemberTypeInfo(rules []memberRule) error {
	types := make([]BinaryType, len(rules))
	for i := range types {
		b, err := d.cur.readU8()
		if err != nil {
			return err
		}
		types[i] = BinaryType(b)
	}
	for i, bt := range types {
		switch bt {
		case BinaryTypePrimitive:
			kb, err := d.cur.readU8()
			if err != nil {
				return err
			}
			rules[i] = memberRule{kind: rulePrimitive, primitive: PrimitiveKind(kb)}
		case BinaryTypeString:
			rules[i] = memberRule{kind: ruleString}
		case BinaryTypeObject:
			rules[i] = memberRule{kind: ruleObject}
		case BinaryTypeSystemClass:
			if _, err := readLPString(d.cur); err != nil { // class name, discarded
				return err
			}
			rules[i] = memberRule{kind: ruleClassRef}
		case BinaryTypeClass:
			if _, err := readLPString(d.cur); err != nil { // class name, discarded
				return err
			}
			if _, err := d.cur.readI32LE(); err != nil { // library id, discarded
				return err
			}
			rules[i] = memberRule{kind: ruleClassRef}
		case BinaryTypeObjectArray:
			rules[i] = memberRule{kind: ruleObjectArray}
		case BinaryTypeStringArray:
			rules[i] = memberRule{kind: ruleStringArray}
		case BinaryTypePrimitiveArray:
			kb, err := d.cur.readU8()
			if err != nil {
				return err
			}
			rules[i] = memberRule{kind: rulePrimitiveArray, primitive: PrimitiveKind(kb)}
		default:
			return offsetError(d.cur.tell(), unknownBinaryTypeError(bt))
		}
	}
	return nil
}

// fillObjectMembers fills every member slot of an instance of schema and
// assembles the resulting Object value.
func (d *Decoder) fillObjectMembers(objectID int32, schema *classSchema) (Value, error) {
	v := Value{
		Kind:          KindObject,
		ObjectClass:   schema.className,
		ObjectMembers: schema.members,
		Object:        make(map[string]Value, len(schema.members)),
	}
	if len(schema.members) != len(schema.rules) {
		return Value{}, schemaMemberCountError(len(schema.members), len(schema.rules))
	}
	for i, name := range schema.members {
		values, err := d.fillSlots(objectID, memberLocatorAt(name), 1, schema.rules[i])
		if err != nil {
			return Value{}, err
		}
		v.Object[name] = values[0]
	}
	return v, nil
}

func memberLocatorAt(name string) locatorAtFunc {
	return func(int) Locator { return memberLocator(name) }
}
