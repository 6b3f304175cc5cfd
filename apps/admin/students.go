package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-attendance/core/student"
)

// importStudents adds or updates the students listed in the JSON file at path.
func (cli *commandLine) importStudents(ctx context.Context, path string) error {
	var r io.Reader = cli.in
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	var nss []student.NewStudent
	if err := json.NewDecoder(r).Decode(&nss); err != nil {
		return errors.Wrap(err, "decoding students")
	}
	students, err := cli.stdSvc.Import(ctx, nss)
	if err != nil {
		return cli.translate(err)
	}
	fmt.Fprintf(cli.out, "imported %d students\n", len(students))
	return nil
}
