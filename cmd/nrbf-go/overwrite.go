// Copyright (c) 2025 Neomantra Corp

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nrbf-go/nrbf-go"
)

var (
	owObjectID    int32
	owLocatorKind string
	owIndex       int
	owMember      string
	owKind        string
	owValue       string
)

func init() {
	rootCmd.AddCommand(overwriteCmd)
	flags := overwriteCmd.Flags()
	flags.Int32Var(&owObjectID, "object-id", 0, "ObjectId of the container that owns the slot")
	flags.StringVar(&owLocatorKind, "locator", "", "index, member, map_key, map_value, or set_elem")
	flags.IntVar(&owIndex, "index", 0, "Element index, for locator in {index, map_key, map_value, set_elem}")
	flags.StringVar(&owMember, "member", "", "Member name, for locator=member")
	flags.StringVar(&owKind, "kind", "", "Primitive type of the replacement value: bool, i8, u8, i16, u16, i32, u32, i64, u64, f32, f64")
	flags.StringVar(&owValue, "value", "", "Replacement value, formatted as plain text")
	overwriteCmd.MarkFlagRequired("object-id")
	overwriteCmd.MarkFlagRequired("locator")
	overwriteCmd.MarkFlagRequired("kind")
	overwriteCmd.MarkFlagRequired("value")
}

var overwriteCmd = &cobra.Command{
	Use:   "overwrite file",
	Short: "Patches a writable fixed-width primitive slot in place, in the underlying file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOverwrite(args[0])
	},
}

func runOverwrite(path string) error {
	locator, err := locatorFromFlags()
	if err != nil {
		return err
	}
	value, err := parseValue(owKind, owValue)
	if err != nil {
		return fmt.Errorf("parsing --value for --kind %s: %w", owKind, err)
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	d := nrbf.NewDecoder(f, true)
	if _, err := d.Read(); err != nil {
		return fmt.Errorf("decoding: %w", err)
	}
	if !d.IsWritable(owObjectID, locator) {
		return fmt.Errorf("object %d has no writable slot at that locator", owObjectID)
	}
	if err := d.Write(owObjectID, locator, value); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}

	logger.Info("overwrite", "file", path, "object_id", owObjectID, "locator", owLocatorKind, "kind", owKind)
	return nil
}

func locatorFromFlags() (nrbf.Locator, error) {
	switch owLocatorKind {
	case "index":
		return nrbf.IndexLocator(owIndex), nil
	case "member":
		if owMember == "" {
			return nrbf.Locator{}, fmt.Errorf("--member is required for --locator=member")
		}
		return nrbf.MemberLocator(owMember), nil
	case "map_key":
		return nrbf.MapKeyLocator(owIndex), nil
	case "map_value":
		return nrbf.MapValueLocator(owIndex), nil
	case "set_elem":
		return nrbf.SetElemLocator(owIndex), nil
	default:
		return nrbf.Locator{}, fmt.Errorf("unknown --locator %q", owLocatorKind)
	}
}

// parseValue builds an nrbf.Value of the requested primitive kind from a
// loosely-typed command-line string, mirroring internal/mcpserver's
// ValueForKind for the same purpose over MCP.
func parseValue(kind, raw string) (nrbf.Value, error) {
	switch kind {
	case "bool":
		b, err := strconv.ParseBool(raw)
		return nrbf.Value{Kind: nrbf.KindBool, Bool: b}, err
	case "i8":
		n, err := strconv.ParseInt(raw, 10, 8)
		return nrbf.Value{Kind: nrbf.KindI8, I8: int8(n)}, err
	case "u8":
		n, err := strconv.ParseUint(raw, 10, 8)
		return nrbf.Value{Kind: nrbf.KindU8, U8: uint8(n)}, err
	case "i16":
		n, err := strconv.ParseInt(raw, 10, 16)
		return nrbf.Value{Kind: nrbf.KindI16, I16: int16(n)}, err
	case "u16":
		n, err := strconv.ParseUint(raw, 10, 16)
		return nrbf.Value{Kind: nrbf.KindU16, U16: uint16(n)}, err
	case "i32":
		n, err := strconv.ParseInt(raw, 10, 32)
		return nrbf.Value{Kind: nrbf.KindI32, I32: int32(n)}, err
	case "u32":
		n, err := strconv.ParseUint(raw, 10, 32)
		return nrbf.Value{Kind: nrbf.KindU32, U32: uint32(n)}, err
	case "i64":
		n, err := strconv.ParseInt(raw, 10, 64)
		return nrbf.Value{Kind: nrbf.KindI64, I64: n}, err
	case "u64":
		n, err := strconv.ParseUint(raw, 10, 64)
		return nrbf.Value{Kind: nrbf.KindU64, U64: n}, err
	case "f32":
		n, err := strconv.ParseFloat(raw, 32)
		return nrbf.Value{Kind: nrbf.KindF32, F32: float32(n)}, err
	case "f64":
		n, err := strconv.ParseFloat(raw, 64)
		return nrbf.Value{Kind: nrbf.KindF64, F64: n}, err
	default:
		return nrbf.Value{}, fmt.Errorf("unsupported kind %q", kind)
	}
}
