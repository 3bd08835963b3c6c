package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joshmaas/bootkit/boot"
	"github.com/joshmaas/bootkit/internal/layout"
)

func init() {
	rootCmd.AddCommand(newVerifyCmd())
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <image>",
		Short: "Check a flashed image's cold header",
		Long: `Reads the cold header block from the front of an image file and
validates its magic sentinel, the same check the boot sequencer performs
before running any user code. Also reports the header words and the
block checksum the uploader uses for hot-relink comparison.

Example:
  bootmap verify program.bin
  bootmap verify program.bin --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args[0])
		},
	}
	return cmd
}

type verifyReport struct {
	File     string `json:"file"`
	Valid    bool   `json:"valid"`
	Magic    string `json:"magic"`
	Type     string `json:"type"`
	Owner    string `json:"owner"`
	Options  string `json:"options"`
	Checksum string `json:"checksum"`
	Error    string `json:"error,omitempty"`
}

func runVerify(path string) error {
	logger.Debug("reading image", zap.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close() //nolint:errcheck

	block := make([]byte, layout.ColdHeaderSize)
	if _, err := f.ReadAt(block, layout.ColdHeaderOffset); err != nil {
		return fmt.Errorf("image too short for a cold header: %w", err)
	}

	h, err := boot.ParseColdHeader(block)
	if err != nil {
		return err
	}

	rep := verifyReport{
		File:     path,
		Magic:    hex32(h.Magic),
		Type:     hex32(h.Type),
		Owner:    hex32(h.Owner),
		Options:  hex32(h.Options),
		Checksum: hex32(boot.ColdChecksum(block)),
	}
	if verr := h.Validate(); verr != nil {
		rep.Error = verr.Error()
	} else {
		rep.Valid = true
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
	} else {
		fmt.Printf("File:     %s\n", rep.File)
		fmt.Printf("Magic:    %s\n", rep.Magic)
		fmt.Printf("Type:     %s\n", rep.Type)
		fmt.Printf("Owner:    %s\n", rep.Owner)
		fmt.Printf("Options:  %s\n", rep.Options)
		fmt.Printf("Checksum: %s\n", rep.Checksum)
		if rep.Valid {
			fmt.Println("Header:   valid")
		} else {
			fmt.Printf("Header:   INVALID (%s)\n", rep.Error)
		}
	}

	if !rep.Valid {
		return errors.New("cold header validation failed")
	}
	return nil
}
