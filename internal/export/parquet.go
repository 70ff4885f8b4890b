// Copyright (c) 2025 Neomantra Corp

// Package export writes a homogeneous array of decoded Object values to
// Parquet, and lets callers run SQL against the result with DuckDB.
package export

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/parquet"
	pqfile "github.com/apache/arrow-go/v18/parquet/file"
	pqschema "github.com/apache/arrow-go/v18/parquet/schema"

	"github.com/nrbf-go/nrbf-go"
	"github.com/nrbf-go/nrbf-go/internal/render"
)

// WriteParquet exports rows - a slice of same-shaped nrbf.KindObject
// values, as produced by decoding an ArraySingleObject/BinaryArray of
// class instances - to a Parquet file at destFile. Every row must carry
// the same ObjectMembers in the same order; the schema is derived from
// the first row.
func WriteParquet(rows []nrbf.Value, destFile string) error {
	if len(rows) == 0 {
		return fmt.Errorf("export: no rows to write")
	}
	schema := rows[0]
	if schema.Kind != nrbf.KindObject {
		return fmt.Errorf("export: rows must be object instances, got %v", schema.Kind)
	}

	groupNode, columns, err := groupNodeForMembers(schema)
	if err != nil {
		return err
	}

	outfile, closer, err := nrbf.MakeCompressedWriter(destFile, false)
	if err != nil {
		return fmt.Errorf("export: creating %s: %w", destFile, err)
	}
	defer closer()

	props := parquet.NewWriterProperties(parquet.WithVersion(parquet.V2_LATEST))
	pw := pqfile.NewParquetWriter(outfile, groupNode, pqfile.WithWriterProps(props))
	defer pw.Close()

	rgw := pw.AppendBufferedRowGroup()
	for _, row := range rows {
		if row.Kind != nrbf.KindObject {
			return fmt.Errorf("export: mixed row kinds, got %v", row.Kind)
		}
		if err := writeRow(rgw, row, columns); err != nil {
			return err
		}
	}
	if err := rgw.Close(); err != nil {
		return err
	}
	return pw.FlushWithFooter()
}

// column pairs a member name with the Kind it was inferred from, so
// writeRow knows which typed column-writer to dispatch to.
type column struct {
	name string
	kind nrbf.Kind
}

// groupNodeForMembers builds a flat Parquet schema from schema's member
// names and primitive Kinds. A member whose Kind is not one of the
// primitive scalars supported below is rendered as its JSON projection,
// stored as a UTF8 byte array column - Parquet has no native variant
// column type to fall back to.
func groupNodeForMembers(schema nrbf.Value) (*pqschema.GroupNode, []column, error) {
	fields := make(pqschema.FieldList, 0, len(schema.ObjectMembers))
	columns := make([]column, 0, len(schema.ObjectMembers))
	for _, name := range schema.ObjectMembers {
		v := schema.Object[name]
		node, err := nodeForKind(name, v.Kind)
		if err != nil {
			return nil, nil, err
		}
		fields = append(fields, node)
		columns = append(columns, column{name: name, kind: v.Kind})
	}
	group, err := pqschema.NewGroupNode("schema", parquet.Repetitions.Required, fields, -1)
	if err != nil {
		return nil, nil, err
	}
	return group, columns, nil
}

// nodeForKind builds the column node for kind. Every integer-width column
// other than I32 (NewInt32Node), and the timestamp column, is composed from
// NewPrimitiveNodeLogical with NewIntLogicalType/NewTimestampLogicalType;
// there is no direct boolean, float32, int64, or byte-array constructor in
// this schema package, so Bool rides the 8-bit int column, F32 widens into
// the float64 column, and anything textual goes through
// NewPrimitiveNodeConverted+ConvertedTypes.UTF8.
func nodeForKind(name string, kind nrbf.Kind) (pqschema.Node, error) {
	switch kind {
	case nrbf.KindBool:
		return pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical(name, parquet.Repetitions.Optional, pqschema.NewIntLogicalType(8, false), parquet.Types.Int32, 0, -1)), nil
	case nrbf.KindI8, nrbf.KindU8:
		return pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical(name, parquet.Repetitions.Optional, pqschema.NewIntLogicalType(8, kind == nrbf.KindI8), parquet.Types.Int32, 0, -1)), nil
	case nrbf.KindI16, nrbf.KindU16:
		return pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical(name, parquet.Repetitions.Optional, pqschema.NewIntLogicalType(16, kind == nrbf.KindI16), parquet.Types.Int32, 0, -1)), nil
	case nrbf.KindI32:
		return pqschema.NewInt32Node(name, parquet.Repetitions.Optional, -1), nil
	case nrbf.KindU32:
		return pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical(name, parquet.Repetitions.Optional, pqschema.NewIntLogicalType(32, false), parquet.Types.Int32, 0, -1)), nil
	case nrbf.KindI64, nrbf.KindU64, nrbf.KindTimeSpan:
		return pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical(name, parquet.Repetitions.Optional, pqschema.NewIntLogicalType(64, kind == nrbf.KindI64 || kind == nrbf.KindTimeSpan), parquet.Types.Int64, 0, -1)), nil
	case nrbf.KindF32, nrbf.KindF64:
		return pqschema.NewFloat64Node(name, parquet.Repetitions.Optional, -1), nil
	case nrbf.KindDateTime:
		return pqschema.MustPrimitive(pqschema.NewPrimitiveNodeLogical(name, parquet.Repetitions.Optional, pqschema.NewTimestampLogicalType(true, pqschema.TimeUnitNanos), parquet.Types.Int64, 0, -1)), nil
	default: // String, Decimal, Char, Null, and any container -> textual projection
		return pqschema.MustPrimitive(pqschema.NewPrimitiveNodeConverted(name, parquet.Repetitions.Optional, parquet.Types.ByteArray, pqschema.ConvertedTypes.UTF8, 0, 0, 0, -1)), nil
	}
}

func writeRow(rgw pqfile.BufferedRowGroupWriter, row nrbf.Value, columns []column) error {
	for i, col := range columns {
		v := row.Object[col.name]
		cw, err := rgw.Column(i)
		if err != nil {
			return err
		}
		if err := writeScalar(cw, v); err != nil {
			return fmt.Errorf("export: column %s: %w", col.name, err)
		}
	}
	return nil
}

// writeScalar dispatches v to the one column-writer type the schema built
// for it. WriteBatch's own (numValues, numBytes) return is ignored, same as
// every call site it's modeled on - a column-level write failure surfaces
// through the writer's own internal state rather than per-call here.
func writeScalar(cw pqfile.ColumnChunkWriter, v nrbf.Value) error {
	def := []int16{1}
	switch w := cw.(type) {
	case *pqfile.Int32ColumnChunkWriter:
		w.WriteBatch([]int32{int32FromValue(v)}, def, nil)
	case *pqfile.Int64ColumnChunkWriter:
		w.WriteBatch([]int64{int64FromValue(v)}, def, nil)
	case *pqfile.Float64ColumnChunkWriter:
		w.WriteBatch([]float64{float64FromValue(v)}, def, nil)
	case *pqfile.ByteArrayColumnChunkWriter:
		w.WriteBatch([]parquet.ByteArray{parquet.ByteArray(textOf(v))}, def, nil)
	default:
		return fmt.Errorf("unsupported column writer %T", cw)
	}
	return nil
}

func int32FromValue(v nrbf.Value) int32 {
	switch v.Kind {
	case nrbf.KindBool:
		if v.Bool {
			return 1
		}
		return 0
	case nrbf.KindI8:
		return int32(v.I8)
	case nrbf.KindI16:
		return int32(v.I16)
	case nrbf.KindI32:
		return v.I32
	case nrbf.KindU8:
		return int32(v.U8)
	case nrbf.KindU16:
		return int32(v.U16)
	case nrbf.KindU32:
		return int32(v.U32)
	default:
		return 0
	}
}

func float64FromValue(v nrbf.Value) float64 {
	switch v.Kind {
	case nrbf.KindF32:
		return float64(v.F32)
	case nrbf.KindF64:
		return v.F64
	default:
		return 0
	}
}

func int64FromValue(v nrbf.Value) int64 {
	switch v.Kind {
	case nrbf.KindI64:
		return v.I64
	case nrbf.KindU64:
		return int64(v.U64)
	case nrbf.KindTimeSpan:
		return v.TimeSpan
	case nrbf.KindDateTime:
		// nanoseconds since the Unix epoch; 621355968000000000 is the .NET
		// tick count of 1970-01-01T00:00:00
		return (v.DateTime.Ticks - 621355968000000000) * 100
	default:
		return 0
	}
}

func textOf(v nrbf.Value) string {
	switch v.Kind {
	case nrbf.KindString, nrbf.KindDecimal:
		return v.Str
	case nrbf.KindChar:
		return string(v.Char)
	case nrbf.KindNull:
		return ""
	default:
		var buf strings.Builder
		if err := render.WriteJSON(&buf, v); err != nil {
			return v.String()
		}
		return strings.TrimSpace(buf.String())
	}
}
