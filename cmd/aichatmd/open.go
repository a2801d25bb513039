package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/aichatmd/internal/open"
)

func openCmd() *cobra.Command {
	var hitBlockID int

	cmd := &cobra.Command{
		Use:   "open <transcript key>",
		Short: "Open the converted Markdown in $EDITOR at the hit block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openArchive(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			return open.Transcript(db, args[0], hitBlockID)
		},
	}

	cmd.Flags().IntVar(&hitBlockID, "hit", -1, "Block ID to jump to")

	return cmd
}
