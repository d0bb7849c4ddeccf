package main

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/recjit/errors"
	"github.com/wippyai/recjit/internal/usecases"
	"github.com/wippyai/recjit/interp"
	"github.com/wippyai/recjit/jit"
	"github.com/wippyai/recjit/record"
)

type parityOptions struct {
	layout  string
	records int
	bounds  bool
}

func newParityCmd() *cobra.Command {
	var opts parityOptions

	cmd := &cobra.Command{
		Use:   "parity",
		Short: "Run every use case through the interpreter and the compiler and compare",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParity(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.layout, "layout", "both", "Record layouts to check (packed, aligned, both)")
	cmd.Flags().IntVar(&opts.records, "records", 3, "Records per array for usecase1")
	cmd.Flags().BoolVar(&opts.bounds, "bounds-check", true, "Compile with bounds checking")
	return cmd
}

func parseLayouts(s string) ([]bool, error) {
	switch s {
	case "packed":
		return []bool{true}, nil
	case "aligned":
		return []bool{false}, nil
	case "both":
		return []bool{true, false}, nil
	default:
		return nil, fmt.Errorf("invalid layout %q: want packed, aligned or both", s)
	}
}

func layoutName(packed bool) string {
	if packed {
		return "packed"
	}
	return "aligned"
}

// parityCheck compares one use case on one layout. It returns a non-empty
// diff when the two executions disagree.
type parityCheck struct {
	name string
	run  func(ctx context.Context, c *jit.Compiler) (string, error)
}

func runParity(ctx context.Context, w io.Writer, opts parityOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	layouts, err := parseLayouts(opts.layout)
	if err != nil {
		return err
	}
	if opts.records < 0 {
		return fmt.Errorf("invalid record count %d", opts.records)
	}

	c, err := jit.New(ctx, jit.Config{BoundsCheck: opts.bounds})
	if err != nil {
		return err
	}
	defer c.Close(ctx)

	conv := record.NewConverter(record.Default())
	var checks []parityCheck
	for _, packed := range layouts {
		checks = append(checks, crossCheck(conv, packed, opts.records))
		for _, p := range usecases.Printers() {
			for _, floatF1 := range []bool{false, true} {
				checks = append(checks, printCheck(conv, p, packed, floatF1, usecases.PrintCount))
				if opts.bounds {
					checks = append(checks, printCheck(conv, p, packed, floatF1, usecases.PrintCount+1))
				}
			}
		}
	}

	failed := 0
	for _, chk := range checks {
		diff, err := chk.run(ctx, c)
		switch {
		case err != nil:
			failed++
			fmt.Fprintf(w, "FAIL %s: %v\n", chk.name, err)
		case diff != "":
			failed++
			fmt.Fprintf(w, "FAIL %s (-interp +compiled):\n%s", chk.name, diff)
		default:
			fmt.Fprintf(w, "ok   %s\n", chk.name)
		}
	}

	jit.Logger().Info("parity finished",
		zap.Int("checks", len(checks)),
		zap.Int("failed", failed),
		zap.Int("compiled", c.Len()))

	if failed > 0 {
		return fmt.Errorf("%d of %d parity checks failed", failed, len(checks))
	}
	return nil
}

func crossCheck(conv *record.Converter, packed bool, n int) parityCheck {
	return parityCheck{
		name: fmt.Sprintf("usecase1/%s/n=%d", layoutName(packed), n),
		run: func(ctx context.Context, c *jit.Compiler) (string, error) {
			rt, err := conv.Convert(usecases.CrossDescriptor().WithPacked(packed))
			if err != nil {
				return "", err
			}
			want1, want2, err := usecases.CrossArrays(rt, n)
			if err != nil {
				return "", err
			}
			got1, got2 := want1.Clone(), want2.Clone()

			if _, err := interp.Run(usecases.Usecase1(), usecases.CrossArgs(rt), []any{want1, want2}, nil); err != nil {
				return "", fmt.Errorf("interpreter: %w", err)
			}
			ep, err := c.Compile(ctx, usecases.Usecase1(), usecases.CrossArgs(rt)...)
			if err != nil {
				return "", err
			}
			if _, err := ep.Call(ctx, nil, got1, got2); err != nil {
				return "", fmt.Errorf("compiled: %w", err)
			}

			return cmp.Diff(want1.Bytes(), got1.Bytes()) + cmp.Diff(want2.Bytes(), got2.Bytes()), nil
		},
	}
}

// printCheck runs a printer over the 5-record fixture with the given
// count. Counts past the fixture must fail the same way on both sides.
func printCheck(conv *record.Converter, p usecases.Printer, packed, floatF1 bool, count int) parityCheck {
	f1 := "i64"
	if floatF1 {
		f1 = "f64"
	}
	return parityCheck{
		name: fmt.Sprintf("%s/%s/f1=%s/count=%d", p.Name, layoutName(packed), f1, count),
		run: func(ctx context.Context, c *jit.Compiler) (string, error) {
			rt, err := conv.Convert(usecases.PrintDescriptor(packed, floatF1))
			if err != nil {
				return "", err
			}
			arr, err := usecases.PrintArray(rt)
			if err != nil {
				return "", err
			}

			var want, got bytes.Buffer
			_, wantErr := interp.Run(p.Fn(), usecases.PrintArgs(rt), []any{arr, count}, &want)

			ep, err := c.Compile(ctx, p.Fn(), usecases.PrintArgs(rt)...)
			if err != nil {
				return "", err
			}
			_, gotErr := ep.Call(ctx, &got, arr, count)

			diff := cmp.Diff(want.String(), got.String())
			if d := cmp.Diff(errorKind(wantErr), errorKind(gotErr)); d != "" {
				diff += "error kind: " + d
			}
			return diff, nil
		},
	}
}

func errorKind(err error) string {
	if err == nil {
		return ""
	}
	var e *errors.Error
	if errors.As(err, &e) {
		return string(e.Kind)
	}
	return err.Error()
}
