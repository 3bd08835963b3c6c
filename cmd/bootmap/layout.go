package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joshmaas/bootkit/internal/layout"
)

func init() {
	rootCmd.AddCommand(newLayoutCmd())
}

func newLayoutCmd() *cobra.Command {
	var (
		ramBase  string
		ramSize  string
		heapLen  string
		stackLen string
		sizes    []string
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Resolve the region table against a platform memory map",
		Long: `Places every region of the fixed table for the given platform and
prints the resulting address map: start, end, length, load policy, and
the linker symbols each boundary publishes.

Section sizes default to zero; pass --size for each loaded section.
Numbers accept 0x prefixes.

Example:
  bootmap layout --ram-base 0x03800000 --ram-size 0x04800000 \
    --heap-length 0 --stack-length 0x2000 \
    --size .text=0x40000 --size .data=0x8000 --size .bss=0x10000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pm, err := parsePlatform(ramBase, ramSize, heapLen, stackLen)
			if err != nil {
				return err
			}
			ss, err := parseSizes(sizes)
			if err != nil {
				return err
			}
			return runLayout(pm, ss)
		},
	}

	cmd.Flags().StringVar(&ramBase, "ram-base", "0x03800000", "RAM base address")
	cmd.Flags().StringVar(&ramSize, "ram-size", "0x04800000", "RAM length in bytes")
	cmd.Flags().StringVar(&heapLen, "heap-length", "0", "Heap length, 0 to fill to the stack")
	cmd.Flags().StringVar(&stackLen, "stack-length", "0x2000", "Stack length in bytes")
	cmd.Flags().StringArrayVar(&sizes, "size", nil, "Section size as name=bytes (repeatable)")
	return cmd
}

func parsePlatform(base, size, heap, stack string) (layout.PlatformMap, error) {
	var pm layout.PlatformMap
	for _, f := range []struct {
		name string
		raw  string
		dst  *uint32
	}{
		{"ram-base", base, &pm.RAMBase},
		{"ram-size", size, &pm.RAMSize},
		{"heap-length", heap, &pm.HeapLength},
		{"stack-length", stack, &pm.StackLength},
	} {
		v, err := parseAddr(f.raw)
		if err != nil {
			return pm, fmt.Errorf("invalid --%s %q: %w", f.name, f.raw, err)
		}
		*f.dst = v
	}
	if pm.HeapLength == 0 {
		pm.HeapLength = layout.HeapFill
	}
	return pm, nil
}

func parseSizes(pairs []string) (layout.SectionSizes, error) {
	ss := layout.SectionSizes{}
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --size %q: want name=bytes", p)
		}
		v, err := parseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --size %q: %w", p, err)
		}
		ss[name] = v
	}
	return ss, nil
}

func parseAddr(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

type regionReport struct {
	Name    string `json:"name"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Length  string `json:"length"`
	Policy  string `json:"policy"`
	Purpose string `json:"purpose"`
}

type layoutReport struct {
	Regions []regionReport    `json:"regions"`
	Symbols map[string]string `json:"symbols"`
}

func runLayout(pm layout.PlatformMap, ss layout.SectionSizes) error {
	logger.Debug("resolving layout",
		zap.Uint32("ramBase", pm.RAMBase),
		zap.Uint32("ramSize", pm.RAMSize))

	lay, err := layout.Resolve(pm, ss)
	if err != nil {
		return fmt.Errorf("failed to resolve layout: %w", err)
	}

	rep := layoutReport{Symbols: map[string]string{}}
	for _, e := range lay.Extents {
		rep.Regions = append(rep.Regions, regionReport{
			Name:    e.Region.Name,
			Start:   hex32(e.Start),
			End:     hex32(e.End),
			Length:  hex32(e.End - e.Start),
			Policy:  e.Region.Load.String(),
			Purpose: e.Region.Purpose.String(),
		})
	}
	for name, addr := range lay.Symbols() {
		rep.Symbols[name] = hex32(addr)
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	fmt.Printf("%-10s %-12s %-12s %-12s %-8s %s\n",
		"REGION", "START", "END", "LENGTH", "POLICY", "PURPOSE")
	for _, r := range rep.Regions {
		fmt.Printf("%-10s %-12s %-12s %-12s %-8s %s\n",
			r.Name, r.Start, r.End, r.Length, r.Policy, r.Purpose)
	}
	fmt.Println()
	for _, name := range layout.SymbolNames() {
		fmt.Printf("%-18s = %s\n", name, rep.Symbols[name])
	}
	return nil
}

func hex32(v uint32) string {
	return fmt.Sprintf("0x%08X", v)
}
