package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/recjit/dtype"
	"github.com/wippyai/recjit/record"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newLayoutCmd() *cobra.Command {
	var (
		packed      bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "layout FILE",
		Short: "Print the converted layout of a record descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var override *bool
			if cmd.Flags().Changed("packed") {
				override = &packed
			}
			rt, err := loadLayout(args[0], override)
			if err != nil {
				return err
			}

			if interactive && term.IsTerminal(int(os.Stdout.Fd())) {
				p := tea.NewProgram(newBrowserModel(args[0], rt), tea.WithAltScreen())
				_, err := p.Run()
				return err
			}
			return renderLayout(cmd.OutOrStdout(), rt)
		},
	}

	cmd.Flags().BoolVar(&packed, "packed", false, "Override the descriptor's packing")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Browse the layout interactively")
	return cmd
}

// loadLayout decodes a YAML descriptor and converts it. A non-nil packed
// replaces the descriptor's own packing, dropping declared offsets.
func loadLayout(path string, packed *bool) (*record.Type, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := dtype.DecodeYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if packed != nil {
		d = d.WithPacked(*packed)
	}

	rt, err := record.NewConverter(record.Default()).Convert(d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rt, nil
}

type layoutRow struct {
	name    string
	kind    string
	offset  uint32
	size    uint32
	padding uint32 // bytes between the previous field's end and this one
}

// layoutRows returns the fields with the gaps between them. Converted
// offsets increase in declaration order. A final row named "(tail)"
// carries trailing padding, if any.
func layoutRows(rt *record.Type) []layoutRow {
	fields := rt.Fields()
	rows := make([]layoutRow, 0, len(fields)+1)
	var end uint32
	for _, f := range fields {
		row := layoutRow{name: f.Name, kind: f.Kind.String(), offset: f.Offset, size: f.Kind.Size()}
		if f.Offset > end {
			row.padding = f.Offset - end
		}
		if e := f.Offset + row.size; e > end {
			end = e
		}
		rows = append(rows, row)
	}
	if rt.Size() > end {
		rows = append(rows, layoutRow{name: "(tail)", offset: end, padding: rt.Size() - end})
	}
	return rows
}

func renderLayout(w io.Writer, rt *record.Type) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("FIELD", "KIND", "OFFSET", "SIZE", "PAD").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, r := range layoutRows(rt) {
		t.Row(r.name, r.kind, u32str(r.offset), u32str(r.size), u32str(r.padding))
	}

	mode := "aligned"
	if rt.Packed() {
		mode = "packed"
	}
	_, err := fmt.Fprintf(w, "%s\n%s: size %d, align %d\n", t.Render(), mode, rt.Size(), rt.Align())
	return err
}

func u32str(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}
