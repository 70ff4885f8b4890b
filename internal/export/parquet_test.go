// Copyright (c) 2025 Neomantra Corp

package export_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrbf-go/nrbf-go"
	"github.com/nrbf-go/nrbf-go/internal/export"
)

// Test Launcher
func TestExport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "export suite")
}

func widgetRow(count int32, name string) nrbf.Value {
	return nrbf.Value{
		Kind:          nrbf.KindObject,
		ObjectClass:   "MyApp.Widget",
		ObjectMembers: []string{"Count", "Name", "Active", "Ratio"},
		Object: map[string]nrbf.Value{
			"Count":  {Kind: nrbf.KindI32, I32: count},
			"Name":   {Kind: nrbf.KindString, Str: name},
			"Active": {Kind: nrbf.KindBool, Bool: count%2 == 0},
			"Ratio":  {Kind: nrbf.KindF64, F64: float64(count) / 2},
		},
	}
}

var _ = Describe("WriteParquet", func() {
	It("errors on an empty row slice", func() {
		err := export.WriteParquet(nil, filepath.Join(GinkgoT().TempDir(), "empty.parquet"))
		Expect(err).To(HaveOccurred())
	})

	It("errors when the first row is not an object", func() {
		rows := []nrbf.Value{{Kind: nrbf.KindI32, I32: 1}}
		err := export.WriteParquet(rows, filepath.Join(GinkgoT().TempDir(), "bad.parquet"))
		Expect(err).To(HaveOccurred())
	})

	It("errors on a row whose Kind doesn't match the inferred schema", func() {
		rows := []nrbf.Value{widgetRow(1, "a"), {Kind: nrbf.KindString, Str: "oops"}}
		err := export.WriteParquet(rows, filepath.Join(GinkgoT().TempDir(), "mixed.parquet"))
		Expect(err).To(HaveOccurred())
	})

	It("writes a non-empty file for a homogeneous set of rows", func() {
		dest := filepath.Join(GinkgoT().TempDir(), "widgets.parquet")
		rows := []nrbf.Value{widgetRow(1, "a"), widgetRow(2, "b"), widgetRow(3, "c")}
		Expect(export.WriteParquet(rows, dest)).To(Succeed())

		info, err := os.Stat(dest)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Size()).To(BeNumerically(">", 0))
	})
})
