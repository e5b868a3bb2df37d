// cmd_extract.go
package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gewnthar/adcvd/sheets"
)

func newExtractCmd() *cobra.Command {
	var input, output string
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Run one batch from a spreadsheet of message IDs and write the result table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()
			if output == "" {
				output = a.cfg.Output.Filename
			}
			return runExtract(cmd.Context(), a, input, output)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Excel or CSV file with a Message_ID column")
	cmd.Flags().StringVarP(&output, "output", "o", "", "result file (.xlsx or .csv); defaults to output.filename")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runExtract(ctx context.Context, a *app, input, output string) error {
	inFormat, err := sheets.FormatFromName(input)
	if err != nil {
		return err
	}
	outFormat, err := sheets.FormatFromName(output)
	if err != nil {
		return err
	}

	in, err := os.Open(input)
	if err != nil {
		return eris.Wrapf(err, "failed to open %s", input)
	}
	ids, err := sheets.ReadMessageIDs(in, inFormat)
	in.Close()
	if err != nil {
		return err
	}

	table, err := a.batch.RunBatch(ctx, ids)
	if err != nil {
		return err
	}
	if len(table.Rows()) == 0 {
		a.logger.Warn("No results extracted.", zap.Int("messages", len(ids)))
		return nil
	}

	out, err := os.Create(output)
	if err != nil {
		return eris.Wrapf(err, "failed to create %s", output)
	}
	if err := sheets.Write(out, table, outFormat); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return eris.Wrapf(err, "failed to write %s", output)
	}

	a.logger.Info("Extraction complete",
		zap.String("output", output),
		zap.Int("records", table.RecordCount()),
		zap.Int("errors", table.ErrorCount()))
	return nil
}
