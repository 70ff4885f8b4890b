// Copyright (c) 2025 Neomantra Corp

package nrbf

// resolvePass implements one fix-up pass over d.pending, per spec.md
// section 4.7. Two passes are required because collection conversion
// (collections.go) rewrites some parent containers and reparents the
// refs that pointed into them; isSecondPass selects whether a ref whose
// target is still a not-yet-converted collection is deferred (pass 1) or
// treated as final (pass 2).
func resolvePass(d *Decoder, isSecondPass bool) {
	for _, p := range d.pending {
		if p.resolved {
			continue
		}
		target, ok := d.objects[p.targetID]
		if !ok {
			continue // only a DanglingRef if still unresolved after pass 2
		}
		if !isSecondPass && isUnconvertedCollection(target) {
			continue
		}
		parent, ok := d.objects[p.parentID]
		if !ok {
			continue
		}
		applyLocator(parent, p.locator, *target)
		p.resolved = true
	}
}

// applyLocator writes v into parent at locator, for whichever container
// Kind parent currently holds.
func applyLocator(parent *Value, locator Locator, v Value) {
	switch locator.kind {
	case locatorMember:
		if parent.Object == nil {
			parent.Object = make(map[string]Value)
		}
		parent.Object[locator.Key] = v
	case locatorIndex:
		switch parent.Kind {
		case KindArray:
			if locator.Index >= 0 && locator.Index < len(parent.Array) {
				parent.Array[locator.Index] = v
			}
		case KindNdArray:
			if locator.Index >= 0 && locator.Index < len(parent.Nd.Elements) {
				parent.Nd.Elements[locator.Index] = v
			}
		}
	case locatorMapKey:
		if locator.Index >= 0 && locator.Index < len(parent.MapEntries) {
			parent.MapEntries[locator.Index].Key = v
		}
	case locatorMapValue:
		if locator.Index >= 0 && locator.Index < len(parent.MapEntries) {
			parent.MapEntries[locator.Index].Value = v
		}
	case locatorSetElem:
		if locator.Index >= 0 && locator.Index < len(parent.SetElements) {
			parent.SetElements[locator.Index] = v
		}
	}
}
