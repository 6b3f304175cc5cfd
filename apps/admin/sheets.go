package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/trezcool/masomo-attendance/core/attendance"
)

// exportSheet writes the reconciled attendance of key as CSV to out (a file path, or '-' for stdout).
func (cli *commandLine) exportSheet(ctx context.Context, key attendance.SheetKey, filter attendance.StatusFilter, search, out string) error {
	ws, err := cli.attSvc.Open(ctx, key)
	if err != nil {
		return cli.translate(err)
	}

	var w io.Writer = cli.out
	if out == "" {
		out = attendance.ExportFilename(ws.Key())
	}
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err = attendance.Export(w, ws, filter, search); err != nil {
		return err
	}
	if out != "-" {
		sum := ws.Summary()
		fmt.Fprintf(cli.out, "exported %s (%d students, %d present, %d absent)\n", out, sum.Total, sum.Present, sum.Absent)
	}
	return nil
}

func (cli *commandLine) clearSheet(ctx context.Context, key attendance.SheetKey) error {
	if err := cli.attSvc.Clear(ctx, key); err != nil {
		return cli.translate(err)
	}
	fmt.Fprintf(cli.out, "cleared %s\n", key)
	return nil
}
