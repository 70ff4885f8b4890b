// Copyright (c) 2025 Neomantra Corp

package nrbf

import "io"

// Locator identifies a position within a parent container: an integer
// index for sequences and (after conversion) Map/Set slots, or a member
// name for an Object member.
type Locator struct {
	Index int
	Key   string // Object member name, when kind == locatorMember
	kind  locatorKind
}

type locatorKind uint8

const (
	locatorIndex locatorKind = iota
	locatorMember
	locatorMapKey
	locatorMapValue
	locatorSetElem
)

func indexLocator(i int) Locator        { return Locator{Index: i, kind: locatorIndex} }
func memberLocator(name string) Locator { return Locator{Key: name, kind: locatorMember} }
func mapKeyLocator(i int) Locator       { return Locator{Index: i, kind: locatorMapKey} }
func mapValueLocator(i int) Locator     { return Locator{Index: i, kind: locatorMapValue} }
func setElemLocator(i int) Locator      { return Locator{Index: i, kind: locatorSetElem} }

// IndexLocator, MemberLocator, MapKeyLocator, MapValueLocator, and
// SetElemLocator build the Locator values callers pass to IsWritable and
// Write. locatorKind is unexported so that applyLocator's switch stays
// exhaustive against the closed set defined in this package; these
// constructors are the only way to name a slot from outside it.
func IndexLocator(i int) Locator    { return indexLocator(i) }
func MemberLocator(name string) Locator { return memberLocator(name) }
func MapKeyLocator(i int) Locator   { return mapKeyLocator(i) }
func MapValueLocator(i int) Locator { return mapValueLocator(i) }
func SetElemLocator(i int) Locator  { return setElemLocator(i) }

// pendingRef is a forward reference awaiting resolution: it names the
// object table entry it targets and the (parent, locator) slot that
// should receive the resolved value once available.
type pendingRef struct {
	targetID int32
	parentID int32
	locator  Locator
	resolved bool
}

// overwriteSlot is a recorded (offset, encoding) pair for one primitive
// value whose position in the underlying stream is stable.
type overwriteSlot struct {
	offset int64
	kind   PrimitiveKind
}

// Decoder is a long-lived handle over one NRBF stream, per spec.md
// section 6. It is single-threaded and synchronous: see spec.md section 5.
type Decoder struct {
	cur           *cursor
	classes       *classRegistry
	objects       map[int32]*Value
	pending       []*pendingRef
	overwrite     bool
	slots         map[int32]map[Locator]overwriteSlot
	headerRead    bool
	headerOK      bool
	rootID        int32
	majorVersion  int32
	minorVersion  int32

	// children records, for every (parentID, locator) slot that was filled
	// with a freshly-defined sub-object, that sub-object's own ObjectId.
	// The collection converter uses this to find the ObjectId of a
	// collection's backing "items"/"Keys"/"Values"/"Elements" array so it
	// can reparent PendingRefs and transplant overwrite slots onto the
	// converted container (spec.md section 4.8).
	children map[int32]map[Locator]int32
}

// NewDecoder constructs a long-lived Decoder over source. When
// allowOverwrite is true, source must also implement io.Writer and
// io.Seeker (i.e. be an *os.File or equivalent); Write will otherwise
// fail with ErrNotWritable.
func NewDecoder(source io.Reader, allowOverwrite bool) *Decoder {
	d := &Decoder{
		classes: newClassRegistry(),
		objects: make(map[int32]*Value),
	}
	if allowOverwrite {
		if rws, ok := source.(io.ReadWriteSeeker); ok {
			d.cur = newWritableCursor(rws)
			d.overwrite = true
			d.slots = make(map[int32]map[Locator]overwriteSlot)
		} else {
			d.cur = newCursor(source)
		}
	} else {
		d.cur = newCursor(source)
	}
	return d
}

// Decode is the one-shot convenience entry point: decode(source) -> Value.
func Decode(source io.Reader) (Value, error) {
	d := NewDecoder(source, false)
	return d.Read()
}

// ReadHeader validates the NRBF serialization header. It may be called at
// most once, before Read. Read will call it implicitly if it has not been
// called yet.
func (d *Decoder) ReadHeader() (bool, error) {
	if d.headerRead {
		return d.headerOK, nil
	}
	d.headerRead = true
	pos := d.cur.tell()
	tagByte, err := d.cur.readU8()
	if err != nil {
		return false, err
	}
	if recordTag(tagByte) != tagHeader {
		return false, offsetError(pos, ErrBadHeader)
	}
	if _, err := d.cur.readI32LE(); err != nil { // HeaderId, ignored
		return false, err
	}
	rootID, err := d.cur.readI32LE()
	if err != nil {
		return false, err
	}
	if _, err := d.cur.readI32LE(); err != nil { // HeaderHandle, ignored
		return false, err
	}
	major, err := d.cur.readI32LE()
	if err != nil {
		return false, err
	}
	minor, err := d.cur.readI32LE()
	if err != nil {
		return false, err
	}
	if rootID == 0 || major != 1 || minor != 0 {
		return false, offsetError(pos, ErrBadHeader)
	}
	d.rootID = rootID
	d.majorVersion, d.minorVersion = major, minor
	d.headerOK = true
	return true, nil
}

// Read decodes and returns the root object. It reuses the header read by
// a prior ReadHeader call, if any.
func (d *Decoder) Read() (Value, error) {
	if !d.headerRead {
		ok, err := d.ReadHeader()
		if err != nil {
			return Value{}, err
		}
		if !ok {
			return Value{}, ErrBadHeader
		}
	} else if !d.headerOK {
		return Value{}, ErrBadHeader
	}

	for {
		done, err := d.readTopLevelRecord()
		if err != nil {
			return Value{}, err
		}
		if done {
			break
		}
	}

	resolvePass(d, false)
	convertCollections(d)
	resolvePass(d, true)

	for _, p := range d.pending {
		if !p.resolved {
			return Value{}, offsetError(d.cur.tell(), ErrDanglingRef)
		}
	}

	root, ok := d.objects[d.rootID]
	if !ok {
		return Value{}, offsetError(d.cur.tell(), ErrDanglingRef)
	}

	result := *root
	d.classes = newClassRegistry()
	d.objects = make(map[int32]*Value)
	d.pending = nil
	d.children = nil
	return result, nil
}

// readTopLevelRecord reads one record from the top-level loop. Top-level
// records are always definitional (class, string, array) or structural
// (BinaryLibrary, MessageEnd): bare references and null runs only occur
// inside a member/array slot.
func (d *Decoder) readTopLevelRecord() (done bool, err error) {
	r, err := d.readAnyRecord()
	if err != nil {
		return false, err
	}
	switch r.kind {
	case arMessageEnd:
		return true, nil
	case arLibrary:
		return false, nil
	case arValue:
		if r.objectID != 0 {
			if err := d.storeObject(r.objectID, r.value); err != nil {
				return false, err
			}
		}
		return false, nil
	default:
		return false, offsetError(d.cur.tell(), ErrBadTag)
	}
}

func (d *Decoder) storeObject(id int32, v Value) error {
	if _, exists := d.objects[id]; exists {
		return offsetError(d.cur.tell(), ErrDuplicateId)
	}
	vv := v
	d.objects[id] = &vv
	return nil
}

// noteChild records that parentID's slot at locator was filled with a
// freshly-defined object carrying its own ObjectId, childID.
func (d *Decoder) noteChild(parentID int32, locator Locator, childID int32) {
	m, ok := d.children[parentID]
	if !ok {
		if d.children == nil {
			d.children = make(map[int32]map[Locator]int32)
		}
		m = make(map[Locator]int32)
		d.children[parentID] = m
	}
	m[locator] = childID
}

// childObjectID looks up the ObjectId noted by noteChild for a given
// (parentID, locator) slot.
func (d *Decoder) childObjectID(parentID int32, locator Locator) (int32, bool) {
	m, ok := d.children[parentID]
	if !ok {
		return 0, false
	}
	id, ok := m[locator]
	return id, ok
}

func (d *Decoder) addPendingRef(targetID, parentID int32, locator Locator) {
	d.pending = append(d.pending, &pendingRef{targetID: targetID, parentID: parentID, locator: locator})
}

func (d *Decoder) recordOverwriteSlot(parentID int32, locator Locator, slot overwriteSlot) {
	if !d.overwrite {
		return
	}
	m, ok := d.slots[parentID]
	if !ok {
		m = make(map[Locator]overwriteSlot)
		d.slots[parentID] = m
	}
	m[locator] = slot
}
