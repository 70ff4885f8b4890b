// Copyright (c) 2025 Neomantra Corp

package nrbf

import (
	"strconv"
	"strings"
)

// BinaryType is the wire tag carried by MemberTypeInfo for each member of
// a "...WithTypes" class record (spec.md section 4.3).
type BinaryType uint8

const (
	BinaryTypePrimitive     BinaryType = 0
	BinaryTypeString        BinaryType = 1
	BinaryTypeObject        BinaryType = 2
	BinaryTypeSystemClass   BinaryType = 3
	BinaryTypeClass         BinaryType = 4
	BinaryTypeObjectArray   BinaryType = 5
	BinaryTypeStringArray   BinaryType = 6
	BinaryTypePrimitiveArray BinaryType = 7
)

// memberRuleKind distinguishes the decoding rule attached to one member of
// a class schema.
type memberRuleKind uint8

const (
	ruleUntyped memberRuleKind = iota // no MemberTypeInfo; read the next record generically
	rulePrimitive
	ruleString
	ruleObject
	ruleClassRef // typed class reference; detail discarded
	ruleObjectArray
	ruleStringArray
	rulePrimitiveArray
)

// memberRule is the per-member decoding rule derived from MemberTypeInfo,
// or the zero value (ruleUntyped) when the class record carries none.
type memberRule struct {
	kind      memberRuleKind
	primitive PrimitiveKind // meaningful for rulePrimitive and rulePrimitiveArray
}

// classSchema is a reusable class schema, keyed by the ObjectId under
// which its defining ClassInfo was read.
type classSchema struct {
	objectID  int32
	className string
	members   []string
	rules     []memberRule // rules[i] is ruleUntyped if no MemberTypeInfo was present
}

// classRegistry maps ObjectId -> classSchema for the lifetime of one
// stream (spec.md section 3, "Lifecycle").
type classRegistry struct {
	byObjectID map[int32]*classSchema
}

func newClassRegistry() *classRegistry {
	return &classRegistry{byObjectID: make(map[int32]*classSchema)}
}

func (r *classRegistry) define(s *classSchema) {
	r.byObjectID[s.objectID] = s
}

func (r *classRegistry) lookup(objectID int32) (*classSchema, bool) {
	s, ok := r.byObjectID[objectID]
	return s, ok
}

// sanitizeMemberNames rewrites raw into legal, unique identifiers following
// spec.md section 4.3: each non-alphanumeric character becomes '_'; leading digits and
// underscores are stripped; an empty result becomes "invalid_identifier";
// collisions within the same class are disambiguated by appending the next
// free integer directly to the name (no separator), starting at 2, matching
// the original's make_unique.
func sanitizeMemberNames(raw []string) []string {
	seen := make(map[string]int, len(raw))
	out := make([]string, len(raw))
	for i, name := range raw {
		s := sanitizeOne(name)
		base := s
		if n, exists := seen[base]; exists {
			for {
				n++
				candidate := base + strconv.Itoa(n)
				if _, taken := seen[candidate]; !taken {
					seen[base] = n
					s = candidate
					seen[s] = 0
					break
				}
			}
		} else {
			seen[base] = 1
		}
		out[i] = s
	}
	return out
}

func sanitizeOne(name string) string {
	var b strings.Builder
	for _, r := range name {
		if isAlnum(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	s := strings.TrimLeft(b.String(), "0123456789_")
	if s == "" {
		return "invalid_identifier"
	}
	return s
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
