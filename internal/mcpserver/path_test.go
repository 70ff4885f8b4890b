// Copyright (c) 2025 Neomantra Corp

package mcpserver_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrbf-go/nrbf-go"
	"github.com/nrbf-go/nrbf-go/internal/mcpserver"
)

// Test Launcher
func TestMcpserver(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "mcpserver suite")
}

func widgetTree() nrbf.Value {
	return nrbf.Value{
		Kind:          nrbf.KindObject,
		ObjectClass:   "MyApp.Widget",
		ObjectMembers: []string{"Count", "Tags", "Lookup", "Flags"},
		Object: map[string]nrbf.Value{
			"Count": {Kind: nrbf.KindI32, I32: 7},
			"Tags": {Kind: nrbf.KindArray, Array: []nrbf.Value{
				{Kind: nrbf.KindString, Str: "a"},
				{Kind: nrbf.KindString, Str: "b"},
			}},
			"Lookup": {Kind: nrbf.KindMap, MapEntries: []nrbf.MapEntry{
				{Key: nrbf.Value{Kind: nrbf.KindString, Str: "k"}, Value: nrbf.Value{Kind: nrbf.KindI32, I32: 9}},
			}},
			"Flags": {Kind: nrbf.KindSet, SetElements: []nrbf.Value{
				{Kind: nrbf.KindBool, Bool: true},
			}},
		},
	}
}

var _ = Describe("Locate", func() {
	var root nrbf.Value

	BeforeEach(func() {
		root = widgetTree()
	})

	It("returns the root for \"$\"", func() {
		v, err := mcpserver.Locate(&root, "$")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Kind).To(Equal(nrbf.KindObject))
	})

	It("returns the root for an empty path", func() {
		v, err := mcpserver.Locate(&root, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Kind).To(Equal(nrbf.KindObject))
	})

	It("resolves an object member", func() {
		v, err := mcpserver.Locate(&root, "$.Count")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.I32).To(Equal(int32(7)))
	})

	It("resolves an array index", func() {
		v, err := mcpserver.Locate(&root, "$.Tags[1]")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Str).To(Equal("b"))
	})

	It("resolves a map entry's key", func() {
		v, err := mcpserver.Locate(&root, "$.Lookup{0}.k")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Str).To(Equal("k"))
	})

	It("resolves a map entry's value", func() {
		v, err := mcpserver.Locate(&root, "$.Lookup{0}.v")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.I32).To(Equal(int32(9)))
	})

	It("resolves a set element", func() {
		v, err := mcpserver.Locate(&root, "$.Flags<0>")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Bool).To(BeTrue())
	})

	It("errors on a path not starting with $", func() {
		_, err := mcpserver.Locate(&root, "Count")
		Expect(err).To(HaveOccurred())
	})

	It("errors on an out-of-range array index", func() {
		_, err := mcpserver.Locate(&root, "$.Tags[5]")
		Expect(err).To(HaveOccurred())
	})

	It("errors on a missing member", func() {
		_, err := mcpserver.Locate(&root, "$.Nope")
		Expect(err).To(HaveOccurred())
	})

	It("errors when indexing a non-indexable value", func() {
		_, err := mcpserver.Locate(&root, "$.Count[0]")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("ValueForKind", func() {
	It("parses a bool", func() {
		v, err := mcpserver.ValueForKind("bool", "true")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Kind).To(Equal(nrbf.KindBool))
		Expect(v.Bool).To(BeTrue())
	})

	It("parses an i32", func() {
		v, err := mcpserver.ValueForKind("i32", "42")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.I32).To(Equal(int32(42)))
	})

	It("parses an f64", func() {
		v, err := mcpserver.ValueForKind("f64", "3.14")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.F64).To(BeNumerically("~", 3.14, 1e-9))
	})

	It("errors on an unsupported kind", func() {
		_, err := mcpserver.ValueForKind("string", "hi")
		Expect(err).To(HaveOccurred())
	})

	It("errors when the raw value doesn't parse", func() {
		_, err := mcpserver.ValueForKind("i32", "not-a-number")
		Expect(err).To(HaveOccurred())
	})
})
