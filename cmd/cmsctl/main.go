// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Command cmsctl holds the operator tasks that do not belong in the server:
schema migrations and one-off runs of the background sweeps.

It reads the same environment as the api command.
*/
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/taibuivan/yomira-cms/internal/platform/constants"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).
		With(slog.String(constants.FieldApp, "cmsctl"))

	if err := newRootCmd(logger).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:          "cmsctl",
		Short:        "Operate a Yomira CMS deployment",
		SilenceUsage: true,
		Version:      constants.AppVersion,
	}

	root.AddCommand(newMigrateCmd(logger))
	root.AddCommand(newSweepCmd(logger))

	return root
}
