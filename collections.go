// Copyright (c) 2025 Neomantra Corp

package nrbf

import (
	"fmt"
	"strings"
)

// collectionKind names one of the recognized System.Collections.* shapes
// that convertCollections knows how to fold into a native Map/Set/Array,
// per spec.md section 4.8.
type collectionKind uint8

const (
	collectionNone collectionKind = iota
	collectionArrayList
	collectionGenericList
	collectionHashtable
	collectionGenericDictionary
	collectionGenericHashSet
)

// classifyCollection matches a .NET class name against the closed
// taxonomy of convertible collections. Generic type parameters are never
// parsed, only the backtick-prefixed generic name; this mirrors the
// teacher's tag-dispatch-on-name style rather than attempting a real
// .NET type-name parser.
func classifyCollection(className string) collectionKind {
	if !strings.HasPrefix(className, "System.Collections.") {
		return collectionNone
	}
	lower := strings.ToLower(className)
	switch {
	case strings.Contains(lower, "hashtable"):
		return collectionHashtable
	case strings.Contains(lower, "dictionary`2"):
		return collectionGenericDictionary
	case strings.Contains(lower, "hashset`1"):
		return collectionGenericHashSet
	case strings.Contains(lower, "arraylist"):
		return collectionArrayList
	case strings.Contains(lower, "list`1"):
		return collectionGenericList
	}
	return collectionNone
}

// isUnconvertedCollection reports whether target is an as-yet-opaque
// Object instance of one of the recognized collection classes. resolvePass
// defers fix-up of any ref targeting such an object to its second pass, so
// that the ref observes the converted Map/Set/Array rather than a stale
// snapshot of the pre-conversion Object (section 4.8).
func isUnconvertedCollection(target *Value) bool {
	return target.Kind == KindObject && classifyCollection(target.ObjectClass) != collectionNone
}

// convertCollections walks every object in the table and folds each
// recognized collection instance into its native representation in
// place, preserving the object's identity (the same *Value pointer, so
// every existing or future reference to its ObjectId observes the
// converted form). A collection whose backing fields don't match the
// expected shape - a missing field, a non-array field, a duplicate or
// unhashable key - is left untouched as an opaque Object: a soft
// failure, not a decode error.
//
// Nesting one convertible collection directly inside another (for
// example a Dictionary whose values are themselves Hashtables) is not
// specially sequenced: each object converts independently of the others,
// so a value snapshot taken before its own nested conversion runs may
// still show the pre-conversion Object shape.
func convertCollections(d *Decoder) {
	for id, obj := range d.objects {
		if obj.Kind != KindObject {
			continue
		}
		var (
			converted Value
			ok        bool
		)
		switch classifyCollection(obj.ObjectClass) {
		case collectionArrayList, collectionGenericList:
			converted, ok = d.convertArrayLike(id, obj)
		case collectionHashtable:
			converted, ok = d.convertHashtable(id, obj)
		case collectionGenericDictionary:
			converted, ok = d.convertDictionary(id, obj)
		case collectionGenericHashSet:
			converted, ok = d.convertHashSet(id, obj)
		default:
			continue
		}
		if ok {
			*obj = converted
		}
	}
}

// remapFunc rewrites a locator anchored within a collection's backing
// field into its counterpart within the converted container, or reports
// that the locator isn't one this conversion reparents.
type remapFunc func(Locator) (Locator, bool)

// reparentRefs retargets every still-unresolved PendingRef anchored at
// (fromID, <locator accepted by remap>) onto (toID, <remapped locator>).
func (d *Decoder) reparentRefs(fromID, toID int32, remap remapFunc) {
	for _, p := range d.pending {
		if p.resolved || p.parentID != fromID {
			continue
		}
		if newLocator, ok := remap(p.locator); ok {
			p.parentID = toID
			p.locator = newLocator
		}
	}
}

// transplantOverwriteSlots moves recorded overwrite slots from a
// collection's backing field onto the converted container, under remap.
func (d *Decoder) transplantOverwriteSlots(fromID, toID int32, remap remapFunc) {
	if !d.overwrite {
		return
	}
	src, ok := d.slots[fromID]
	if !ok {
		return
	}
	for locator, slot := range src {
		if newLocator, ok := remap(locator); ok {
			d.recordOverwriteSlot(toID, newLocator, slot)
		}
	}
}

// hashKey produces a canonical string for a Value usable as a Hashtable,
// Dictionary, or HashSet key, plus whether the Value is eligible to be
// one at all. Containers (Object, Array, Map, Set) and Null are never
// eligible: .NET disallows a null Hashtable key outright, and there is
// no way to reproduce a .NET object's GetHashCode/Equals for the rest.
func hashKey(v Value) (string, bool) {
	switch v.Kind {
	case KindBool:
		return fmt.Sprintf("b:%v", v.Bool), true
	case KindI8:
		return fmt.Sprintf("i8:%d", v.I8), true
	case KindU8:
		return fmt.Sprintf("u8:%d", v.U8), true
	case KindI16:
		return fmt.Sprintf("i16:%d", v.I16), true
	case KindU16:
		return fmt.Sprintf("u16:%d", v.U16), true
	case KindI32:
		return fmt.Sprintf("i32:%d", v.I32), true
	case KindU32:
		return fmt.Sprintf("u32:%d", v.U32), true
	case KindI64:
		return fmt.Sprintf("i64:%d", v.I64), true
	case KindU64:
		return fmt.Sprintf("u64:%d", v.U64), true
	case KindF32:
		return fmt.Sprintf("f32:%v", v.F32), true
	case KindF64:
		return fmt.Sprintf("f64:%v", v.F64), true
	case KindChar:
		return fmt.Sprintf("c:%d", v.Char), true
	case KindString, KindDecimal:
		return "s:" + v.Str, true
	case KindTimeSpan:
		return fmt.Sprintf("ts:%d", v.TimeSpan), true
	case KindDateTime:
		return fmt.Sprintf("dt:%d:%d", v.DateTime.Ticks, v.DateTime.Kind), true
	default:
		return "", false
	}
}

// convertArrayLike handles ArrayList and List<T>: both serialize as a
// backing "_items" array plus a "_size" count, sanitized to "items" and
// "size" (section 4.8's ArrayList/Generic.List row).
func (d *Decoder) convertArrayLike(hostID int32, obj *Value) (Value, bool) {
	itemsVal, ok := obj.Object["items"]
	if !ok || itemsVal.Kind != KindArray {
		return Value{}, false
	}
	size := len(itemsVal.Array)
	if sizeVal, ok := obj.Object["size"]; ok {
		if n, ok := asInt64(sizeVal); ok && n >= 0 && int(n) <= size {
			size = int(n)
		}
	}
	result := append([]Value(nil), itemsVal.Array[:size]...)

	if itemsID, ok := d.childObjectID(hostID, memberLocator("items")); ok {
		remap := func(l Locator) (Locator, bool) {
			if l.kind == locatorIndex && l.Index < size {
				return indexLocator(l.Index), true
			}
			return Locator{}, false
		}
		d.reparentRefs(itemsID, hostID, remap)
		d.transplantOverwriteSlots(itemsID, hostID, remap)
	}
	return Value{Kind: KindArray, Array: result}, true
}

// convertHashtable handles System.Collections.Hashtable, which
// ISerializable-serializes as parallel "Keys" and "Values" arrays
// (section 4.8's Hashtable row). Keys beyond the Values array's length
// map to null; a duplicate or unhashable key soft-fails the conversion.
func (d *Decoder) convertHashtable(hostID int32, obj *Value) (Value, bool) {
	keysVal, okK := obj.Object["Keys"]
	valuesVal, okV := obj.Object["Values"]
	if !okK || !okV || keysVal.Kind != KindArray || valuesVal.Kind != KindArray {
		return Value{}, false
	}
	n := len(keysVal.Array)
	entries := make([]MapEntry, n)
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		key := keysVal.Array[i]
		ks, hashable := hashKey(key)
		if !hashable || seen[ks] {
			return Value{}, false
		}
		seen[ks] = true
		val := Null()
		if i < len(valuesVal.Array) {
			val = valuesVal.Array[i]
		}
		entries[i] = MapEntry{Key: key, Value: val}
	}

	if keysID, ok := d.childObjectID(hostID, memberLocator("Keys")); ok {
		remap := func(l Locator) (Locator, bool) {
			if l.kind == locatorIndex && l.Index < n {
				return mapKeyLocator(l.Index), true
			}
			return Locator{}, false
		}
		d.reparentRefs(keysID, hostID, remap)
		d.transplantOverwriteSlots(keysID, hostID, remap)
	}
	if valuesID, ok := d.childObjectID(hostID, memberLocator("Values")); ok {
		remap := func(l Locator) (Locator, bool) {
			if l.kind == locatorIndex && l.Index < n {
				return mapValueLocator(l.Index), true
			}
			return Locator{}, false
		}
		d.reparentRefs(valuesID, hostID, remap)
		d.transplantOverwriteSlots(valuesID, hostID, remap)
	}
	return Value{Kind: KindMap, MapEntries: entries}, true
}

// convertDictionary handles Dictionary<TKey,TValue>, which
// ISerializable-serializes a "KeyValuePairs" array of structs each
// carrying "key" and "value" members (section 4.8's Generic.Dictionary
// row). A pair not yet resolved to an Object (still a bare reference
// placeholder) or missing either member soft-fails the conversion.
func (d *Decoder) convertDictionary(hostID int32, obj *Value) (Value, bool) {
	pairsVal, ok := obj.Object["KeyValuePairs"]
	if !ok || pairsVal.Kind != KindArray {
		return Value{}, false
	}
	n := len(pairsVal.Array)
	entries := make([]MapEntry, n)
	seen := make(map[string]bool, n)
	pairsID, hasPairsID := d.childObjectID(hostID, memberLocator("KeyValuePairs"))

	for i := 0; i < n; i++ {
		elem := pairsVal.Array[i]
		if elem.Kind != KindObject {
			return Value{}, false
		}
		key, okK := elem.Object["key"]
		val, okV := elem.Object["value"]
		if !okK || !okV {
			return Value{}, false
		}
		ks, hashable := hashKey(key)
		if !hashable || seen[ks] {
			return Value{}, false
		}
		seen[ks] = true
		entries[i] = MapEntry{Key: key, Value: val}

		if hasPairsID {
			if elemID, ok := d.childObjectID(pairsID, indexLocator(i)); ok {
				idx := i
				remap := func(l Locator) (Locator, bool) {
					if l.kind != locatorMember {
						return Locator{}, false
					}
					switch l.Key {
					case "key":
						return mapKeyLocator(idx), true
					case "value":
						return mapValueLocator(idx), true
					}
					return Locator{}, false
				}
				d.reparentRefs(elemID, hostID, remap)
				d.transplantOverwriteSlots(elemID, hostID, remap)
			}
		}
	}
	return Value{Kind: KindMap, MapEntries: entries}, true
}

// convertHashSet handles HashSet<T>, which ISerializable-serializes an
// "Elements" array (section 4.8's Generic.HashSet row). A duplicate or
// unhashable element soft-fails the conversion.
func (d *Decoder) convertHashSet(hostID int32, obj *Value) (Value, bool) {
	elemsVal, ok := obj.Object["Elements"]
	if !ok || elemsVal.Kind != KindArray {
		return Value{}, false
	}
	n := len(elemsVal.Array)
	seen := make(map[string]bool, n)
	result := make([]Value, n)
	for i, e := range elemsVal.Array {
		ks, hashable := hashKey(e)
		if !hashable || seen[ks] {
			return Value{}, false
		}
		seen[ks] = true
		result[i] = e
	}

	if elemsID, ok := d.childObjectID(hostID, memberLocator("Elements")); ok {
		remap := func(l Locator) (Locator, bool) {
			if l.kind == locatorIndex && l.Index < n {
				return setElemLocator(l.Index), true
			}
			return Locator{}, false
		}
		d.reparentRefs(elemsID, hostID, remap)
		d.transplantOverwriteSlots(elemsID, hostID, remap)
	}
	return Value{Kind: KindSet, SetElements: result}, true
}
