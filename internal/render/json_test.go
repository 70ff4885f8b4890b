// Copyright (c) 2025 Neomantra Corp

package render_test

import (
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrbf-go/nrbf-go"
	"github.com/nrbf-go/nrbf-go/internal/render"
)

// Test Launcher
func TestRender(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "render suite")
}

func projectionOf(v nrbf.Value) string {
	var buf strings.Builder
	Expect(render.WriteJSON(&buf, v)).To(Succeed())
	return strings.TrimSpace(buf.String())
}

var _ = Describe("WriteJSON", func() {
	It("renders a bare string", func() {
		Expect(projectionOf(nrbf.Value{Kind: nrbf.KindString, Str: "hello"})).To(Equal(`"hello"`))
	})

	It("renders an Int32 scalar", func() {
		Expect(projectionOf(nrbf.Value{Kind: nrbf.KindI32, I32: 42})).To(Equal("42"))
	})

	It("renders an object as class plus members", func() {
		v := nrbf.Value{
			Kind:          nrbf.KindObject,
			ObjectClass:   "MyApp.Widget",
			ObjectMembers: []string{"Count"},
			Object:        map[string]nrbf.Value{"Count": {Kind: nrbf.KindI32, I32: 7}},
		}
		out := projectionOf(v)
		Expect(out).To(ContainSubstring(`"class":"MyApp.Widget"`))
		Expect(out).To(ContainSubstring(`"Count":7`))
	})

	It("renders an array of primitives", func() {
		v := nrbf.Value{Kind: nrbf.KindArray, Array: []nrbf.Value{
			{Kind: nrbf.KindI32, I32: 1},
			{Kind: nrbf.KindI32, I32: 2},
		}}
		Expect(projectionOf(v)).To(Equal("[1,2]"))
	})

	It("renders a Map as an ordered list of key/value entries", func() {
		v := nrbf.Value{Kind: nrbf.KindMap, MapEntries: []nrbf.MapEntry{
			{Key: nrbf.Value{Kind: nrbf.KindString, Str: "a"}, Value: nrbf.Value{Kind: nrbf.KindI32, I32: 1}},
		}}
		out := projectionOf(v)
		Expect(out).To(ContainSubstring(`"key":"a"`))
		Expect(out).To(ContainSubstring(`"value":1`))
	})

	It("renders a UTC DateTime as an RFC3339 instant", func() {
		// 1 tick-day after the .NET epoch: 1 day = 864000000000 ticks
		v := nrbf.Value{Kind: nrbf.KindDateTime, DateTime: nrbf.DateTimeValue{Ticks: 864000000000, Kind: nrbf.DateTimeUTC}}
		Expect(projectionOf(v)).To(Equal(`"0001-01-02T00:00:00Z"`))
	})

	It("renders a null", func() {
		Expect(projectionOf(nrbf.Null())).To(Equal("null"))
	})
})
