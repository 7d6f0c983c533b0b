// cmd/titlepage/config.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	domainconfig "github.com/damianoneill/go-titlepage/pkg/domain/config"
	domainpage "github.com/damianoneill/go-titlepage/pkg/domain/page"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type configOutput struct {
	format string
}

func newConfigCmd(o *rootOptions) *cobra.Command {
	out := &configOutput{}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the flattened, redacted configuration",
		Long: `Print every whitelisted configuration value with its source, redacted the
same way the title page shows it. The html format writes the complete page.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfig(cmd.Context(), cmd.OutOrStdout(), o, out)
		},
	}

	cmd.Flags().StringVarP(&out.format, "output", "o", "table", "output format: table, json or html")

	return cmd
}

func runConfig(ctx context.Context, w io.Writer, o *rootOptions, out *configOutput) error {
	switch out.format {
	case "table", "json", "html":
	default:
		return fmt.Errorf("unknown output format %q", out.format)
	}

	svc, err := o.newService(false)
	if err != nil {
		return fmt.Errorf("creating service: %w", err)
	}
	defer func() { _ = svc.Shutdown(context.Background()) }()

	page := svc.TitlePage()
	if page == nil {
		return fmt.Errorf("title page is disabled")
	}

	if out.format == "html" {
		return page.Render(ctx, w)
	}

	entries, err := page.Entries(ctx)
	if err != nil {
		return err
	}

	if out.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	_, err = fmt.Fprintln(w, renderTable(entries))
	return err
}

func renderTable(entries []domainconfig.FlatEntry) string {
	if len(entries) == 0 {
		return noticeStyle.Render(domainpage.HiddenConfigurationNotice)
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Key, e.Value})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("KEY", "VALUE").
		Rows(rows...).
		String()
}
