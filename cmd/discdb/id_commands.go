package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"discdb/internal/identifier"
)

func newIDCommand(ctx *commandContext) *cobra.Command {
	idCmd := &cobra.Command{
		Use:   "id",
		Short: "Encode and decode public contribution identifiers",
	}
	idCmd.AddCommand(&cobra.Command{
		Use:   "encode <number>",
		Short: "Encode an internal id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := idCodec(ctx)
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil {
				return fmt.Errorf("id must be a number, got %q", args[0])
			}
			enc, err := codec.Encode(id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), enc)
			return nil
		},
	})
	idCmd.AddCommand(&cobra.Command{
		Use:   "decode <id>",
		Short: "Decode a public identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := idCodec(ctx)
			if err != nil {
				return err
			}
			id, err := codec.Decode(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	})
	return idCmd
}

func idCodec(ctx *commandContext) (*identifier.Codec, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return identifier.New(cfg.IdentifierOptions())
}
