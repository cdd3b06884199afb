package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/okushigue/rzqr/internal/domain"
	"github.com/okushigue/rzqr/internal/modules/pipeline"
	"github.com/okushigue/rzqr/internal/modules/results"
)

// topStates is how many ranked states the text report lists
const topStates = 8

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func basisList(basis []domain.GateName) string {
	names := make([]string, len(basis))
	for i, g := range basis {
		names[i] = string(g)
	}
	return strings.Join(names, ", ")
}

// writeRunReport prints the run summary followed by the n most probable states
func writeRunReport(w io.Writer, run domain.RunResult, n int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Run:\t%s\n", run.ID)
	fmt.Fprintf(tw, "Backend:\t%s\n", run.Backend)
	fmt.Fprintf(tw, "Basis:\t%s\n", basisList(domain.NativeBasis))
	fmt.Fprintf(tw, "Precision:\t%d digits, radius %g, %d zeros\n",
		run.Config.DecimalDigits, run.Config.InfluenceRadius, run.Config.ZeroCount)
	fmt.Fprintf(tw, "Circuit:\t%d gates, depth %d\n", run.GateCount, run.Depth)
	fmt.Fprintf(tw, "Shots:\t%d\n", run.Shots)
	fmt.Fprintf(tw, "Targets:\t%s\n", strings.Join(run.Targets, ", "))
	fmt.Fprintf(tw, "Success rate:\t%.2f%%\n", run.SuccessRate*100)
	fmt.Fprintf(tw, "Elapsed:\t%s\n", run.Elapsed.Round(time.Millisecond))
	if err := tw.Flush(); err != nil {
		return err
	}

	top := results.Top(run.Ranked, n)
	fmt.Fprintf(w, "\nTop %d states:\n", len(top))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "state\tcount\tprobability\t")
	for _, o := range top {
		fmt.Fprintf(tw, "%s\t%d\t%.2f%%\t\n", o.BitString, o.Count, o.Probability*100)
	}
	return tw.Flush()
}

// writeCircuitReport prints angles, circuit statistics and the gate histogram
func writeCircuitReport(w io.Writer, p *pipeline.Prepared) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Qubits:\t%d\n", p.Stats.Qubits)
	fmt.Fprintf(tw, "Iterations:\t%d\n", p.Stats.Iterations)
	fmt.Fprintf(tw, "Gates:\t%d\n", p.Stats.GateCount)
	fmt.Fprintf(tw, "Depth:\t%d\n", p.Stats.Depth)
	fmt.Fprintf(tw, "Basis:\t%s\n", basisList(p.Circuit.Basis))
	fmt.Fprintf(tw, "Targets:\t%s\n", strings.Join(p.Circuit.Targets, ", "))
	fmt.Fprintf(tw, "Oracle bias:\t%.6f\n", p.Angles.OracleBias)
	for i, a := range p.Angles.StatePrep {
		fmt.Fprintf(tw, "Prep angle q%d:\t%.6f\n", i, a)
	}
	for _, name := range p.Stats.GateNames() {
		fmt.Fprintf(tw, "Gate %s:\t%d\n", name, p.Stats.Histogram[name])
	}
	return tw.Flush()
}
