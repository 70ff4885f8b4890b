// Copyright (c) 2025 Neomantra Corp

package nrbf

// locatorAtFunc produces the Locator for the i-th slot being filled.
type locatorAtFunc func(i int) Locator

// fillSlots fills count consecutive slots of a container identified by
// parentID, following the member-slot reader algorithm of spec.md
// section 4.5: a primitive decoding rule reads the raw primitive bytes
// directly (step 1); anything else reads the next generic record,
// transparently discarding interstitial BinaryLibrary declarations and
// expanding ObjectNullMultiple[256] runs, and deferring MemberReference
// as a PendingRef (step 2).
func (d *Decoder) fillSlots(parentID int32, locatorAt locatorAtFunc, count int, rule memberRule) ([]Value, error) {
	values := make([]Value, count)
	i := 0
	for i < count {
		if rule.kind == rulePrimitive {
			offset := d.cur.tell()
			v, err := readPrimitive(d.cur, rule.primitive)
			if err != nil {
				return nil, err
			}
			values[i] = v
			d.maybeRecordFixedSlot(parentID, locatorAt(i), rule.primitive, offset)
			i++
			continue
		}

		r, err := d.readAnyRecordSkipLibrary()
		if err != nil {
			return nil, err
		}
		switch r.kind {
		case arNullRun:
			n := r.nullCount
			if i+n > count {
				n = count - i
			}
			for k := 0; k < n; k++ {
				values[i+k] = Null()
			}
			if n <= 0 {
				n = 1 // defensive: never spin forever on a malformed zero-count run
				values[i] = Null()
			}
			i += n
		case arRef:
			d.addPendingRef(r.refTarget, parentID, locatorAt(i))
			values[i] = Value{Kind: KindRef}
			i++
		case arValue:
			if r.objectID != 0 {
				if err := d.storeObject(r.objectID, r.value); err != nil {
					return nil, err
				}
				d.noteChild(parentID, locatorAt(i), r.objectID)
			}
			values[i] = r.value
			if r.hasFixedPrimitive {
				d.recordOverwriteSlot(parentID, locatorAt(i), overwriteSlot{offset: r.fixedOffset, kind: r.fixedKind})
			}
			i++
		default:
			return nil, offsetError(d.cur.tell(), ErrBadTag)
		}
	}
	return values, nil
}

func (d *Decoder) maybeRecordFixedSlot(parentID int32, locator Locator, kind PrimitiveKind, offset int64) {
	if !d.overwrite {
		return
	}
	if _, ok := kind.fixedWidth(); !ok {
		return
	}
	d.recordOverwriteSlot(parentID, locator, overwriteSlot{offset: offset, kind: kind})
}
