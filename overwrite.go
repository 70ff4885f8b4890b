// Copyright (c) 2025 Neomantra Corp

package nrbf

// IsWritable reports whether the member or array slot named by locator,
// on the object identified by objectID, was recorded as a fixed-width
// primitive overwrite slot during decoding (spec.md section 6's
// is_writable). It is always false when the Decoder was not constructed
// with overwrite enabled.
func (d *Decoder) IsWritable(objectID int32, locator Locator) bool {
	if !d.overwrite {
		return false
	}
	m, ok := d.slots[objectID]
	if !ok {
		return false
	}
	_, ok = m[locator]
	return ok
}

// Write patches a fixed-width primitive value in place in the
// underlying stream, at the byte offset recorded when that slot was
// first decoded. objectID is the ObjectId of the container that owns
// the slot - the same identity a MemberReference into it would carry -
// and locator addresses the member or element within it, exactly as
// returned by the decoded Value's shape. Write never touches the
// in-memory Value graph already returned by Read; callers that want the
// new value reflected there must re-decode.
func (d *Decoder) Write(objectID int32, locator Locator, value Value) error {
	if !d.overwrite {
		return ErrNotWritable
	}
	m, ok := d.slots[objectID]
	if !ok {
		return ErrNotWritable
	}
	slot, ok := m[locator]
	if !ok {
		return ErrNotWritable
	}
	encoded, err := encodeFixedWidth(slot.kind, value)
	if err != nil {
		return err
	}
	return d.cur.seekWrite(slot.offset, encoded)
}
