package main

import (
	"fmt"

	"github.com/okushigue/rzqr/internal/modules/circuit"
	"github.com/spf13/cobra"
)

func runZeros(cmd *cobra.Command, args []string) error {
	zeros, err := newService().Zeros(cmd.Context(), cfg.Pipeline.ZeroCount, cfg.Pipeline.DecimalDigits)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, map[string]interface{}{
			"digits": zeros.Digits,
			"zeros":  zeros.Strings(),
		})
	}
	for i, z := range zeros.Strings() {
		fmt.Fprintf(out, "%3d  %s\n", i+1, z)
	}
	return nil
}

func runCircuit(cmd *cobra.Command, args []string) error {
	prepared, err := newService().Prepare(cmd.Context(), cfg.Precision())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, prepared)
	}
	return writeCircuitReport(out, prepared)
}

func runQASM(cmd *cobra.Command, args []string) error {
	prepared, err := newService().Prepare(cmd.Context(), cfg.Precision())
	if err != nil {
		return err
	}

	src, err := circuit.QASM(prepared.Circuit)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), src)
	return err
}
