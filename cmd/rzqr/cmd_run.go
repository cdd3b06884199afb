package main

import (
	"github.com/okushigue/rzqr/internal/di"
	"github.com/okushigue/rzqr/internal/modules/pipeline"
	"github.com/okushigue/rzqr/internal/modules/runs"
	"github.com/spf13/cobra"
)

func runPipeline(cmd *cobra.Command, args []string) error {
	var opts []pipeline.Option

	record, _ := cmd.Flags().GetBool("record")
	if record {
		container, err := di.InitializeDatabases(cfg, log)
		if err != nil {
			return err
		}
		defer container.LedgerDB.Close()
		opts = append(opts, pipeline.WithRecorder(runs.NewRepository(container.LedgerDB.Conn(), log)))
	}

	svc := newService(opts...)
	result, err := svc.Run(cmd.Context(), pipeline.Request{
		Precision: cfg.Precision(),
		Shots:     cfg.Pipeline.Shots,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, result)
	}
	return writeRunReport(out, result, topStates)
}
