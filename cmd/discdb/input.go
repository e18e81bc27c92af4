package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"discdb/internal/fileutil"
)

// maxImageBytes caps uploaded cover images.
const maxImageBytes = 8 << 20

// readRawArg reads path, or stdin for "-", refusing input over limit bytes.
func readRawArg(cmd *cobra.Command, path string, limit int64) ([]byte, error) {
	if path == "-" {
		raw, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), limit+1))
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		if int64(len(raw)) > limit {
			return nil, fmt.Errorf("stdin exceeds %d bytes: %w", limit, fileutil.ErrTooLarge)
		}
		return raw, nil
	}
	raw, err := fileutil.ReadLimited(path, limit)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}
