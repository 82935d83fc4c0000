package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/TrevorS/diptest"
)

const defaultAlpha = 0.05

type intervalReport struct {
	Low      int `json:"low"`
	High     int `json:"high"`
	BestLow  int `json:"best_low"`
	BestHigh int `json:"best_high"`
}

type testReport struct {
	N             int             `json:"n"`
	Statistic     float64         `json:"statistic"`
	PValue        float64         `json:"p_value"`
	Strategy      string          `json:"strategy"`
	Backend       string          `json:"backend"`
	Alpha         float64         `json:"alpha"`
	Unimodal      bool            `json:"unimodal"`
	Interval      *intervalReport `json:"interval,omitempty"`
	ModalTriangle *[3]int         `json:"modal_triangle,omitempty"`
}

type pvalueReport struct {
	N         int     `json:"n"`
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	Strategy  string  `json:"strategy"`
}

type criticalReport struct {
	N             int     `json:"n"`
	Alpha         float64 `json:"alpha"`
	CriticalValue float64 `json:"critical_value"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func testCmd(opts *options) *cobra.Command {
	var alpha float64
	var column int
	var detail bool

	cmd := &cobra.Command{
		Use:   "test [file]",
		Short: "Run the dip test on a sample",
		Long: "Reads one number per line, or one CSV column with --column, from file " +
			"or stdin and reports the dip statistic and its p-value.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := loadFileConfig(opts.configPath)
			if err != nil {
				return err
			}
			cfg := opts.resolve(cmd, fc)
			if !cmd.Flags().Changed("alpha") && fc.Alpha != 0 {
				alpha = fc.Alpha
			}
			if !cmd.Flags().Changed("column") && fc.Column != 0 {
				column = fc.Column
			}
			if !(alpha > 0 && alpha < 1) {
				return fmt.Errorf("alpha must be in (0, 1), got %g", alpha)
			}

			in, closeInput, err := openInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			sample, err := readSample(in, column)
			if cerr := closeInput(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			res, err := diptest.Dip(sample, cfg)
			if err != nil {
				return err
			}
			p, err := diptest.PValue(cmd.Context(), res.Statistic, len(sample), cfg)
			if err != nil {
				return err
			}

			report := testReport{
				N:         len(sample),
				Statistic: res.Statistic,
				PValue:    p,
				Strategy:  string(cfg.Strategy),
				Backend:   string(diptest.ResolveBackend(cfg)),
				Alpha:     alpha,
				Unimodal:  p >= alpha,
			}
			if detail {
				report.Interval = &intervalReport{
					Low:      res.Interval.Low,
					High:     res.Interval.High,
					BestLow:  res.Interval.BestLow,
					BestHigh: res.Interval.BestHigh,
				}
				report.ModalTriangle = &res.ModalTriangle
			}

			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			printTestReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().Float64Var(&alpha, "alpha", defaultAlpha, "significance level of the verdict")
	cmd.Flags().IntVar(&column, "column", 0, "CSV column holding the sample (0-based)")
	cmd.Flags().BoolVar(&detail, "detail", false, "also report the interval and modal triangle")

	return cmd
}

func printTestReport(w io.Writer, r testReport) {
	cyan := color.New(color.FgCyan)
	dim := color.New(color.Faint)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	_, _ = cyan.Fprintf(w, "%-10s %s\n", "Dip test", r.Backend)
	_, _ = dim.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintf(w, "%-10s %d\n", "n", r.N)
	fmt.Fprintf(w, "%-10s %.6g\n", "dip", r.Statistic)
	fmt.Fprintf(w, "%-10s %.6g (%s)\n", "p-value", r.PValue, r.Strategy)
	if r.Interval != nil {
		fmt.Fprintf(w, "%-10s [%d, %d] best [%d, %d]\n", "interval",
			r.Interval.Low, r.Interval.High, r.Interval.BestLow, r.Interval.BestHigh)
	}
	if r.ModalTriangle != nil {
		fmt.Fprintf(w, "%-10s %v\n", "modal", *r.ModalTriangle)
	}
	if r.Unimodal {
		_, _ = green.Fprintf(w, "%-10s unimodal at alpha=%g\n", "verdict", r.Alpha)
	} else {
		_, _ = red.Fprintf(w, "%-10s not unimodal at alpha=%g\n", "verdict", r.Alpha)
	}
}

func pvalueCmd(opts *options) *cobra.Command {
	var statistic float64
	var n int

	cmd := &cobra.Command{
		Use:   "pvalue",
		Short: "P-value of a known dip statistic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := loadFileConfig(opts.configPath)
			if err != nil {
				return err
			}
			cfg := opts.resolve(cmd, fc)

			p, err := diptest.PValue(cmd.Context(), statistic, n, cfg)
			if err != nil {
				return err
			}
			report := pvalueReport{N: n, Statistic: statistic, PValue: p, Strategy: string(cfg.Strategy)}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.6g (%s)\n", p, report.Strategy)
			return nil
		},
	}

	cmd.Flags().Float64Var(&statistic, "dip", 0, "dip statistic")
	cmd.Flags().IntVar(&n, "n", 0, "sample size")
	_ = cmd.MarkFlagRequired("dip")
	_ = cmd.MarkFlagRequired("n")

	return cmd
}

func criticalCmd(opts *options) *cobra.Command {
	var alpha float64
	var n int

	cmd := &cobra.Command{
		Use:   "critical",
		Short: "Critical dip value for a sample size and significance level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cv, err := diptest.CriticalValue(n, alpha)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), criticalReport{N: n, Alpha: alpha, CriticalValue: cv})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.6g\n", cv)
			return nil
		},
	}

	cmd.Flags().Float64Var(&alpha, "alpha", defaultAlpha, "significance level")
	cmd.Flags().IntVar(&n, "n", 0, "sample size")
	_ = cmd.MarkFlagRequired("n")

	return cmd
}
