package main

import (
	"fmt"
	"io/fs"
	"strconv"

	"github.com/pkg/errors"
	"github.com/trezcool/goose"

	"github.com/trezcool/masomo-attendance/storage/database"
)

// mockable
var (
	gooseUpFunc      = goose.Up
	gooseUpByOneFunc = goose.UpByOne
	gooseUpToFunc    = goose.UpTo
	gooseDownFunc    = goose.Down
	gooseDownToFunc  = goose.DownTo
	gooseRedoFunc    = goose.Redo
)

var errNoSQLDatabase = errors.New("migrate requires the postgres storage engine")

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoSQLDatabase
	}
	var fsys fs.FS = database.Migrations
	dir := database.MigrationsDir

	command := args[0]
	switch command {
	case "up":
		return gooseUpFunc(cli.db, fsys, dir)
	case "up-by-one":
		return gooseUpByOneFunc(cli.db, fsys, dir)
	case "down":
		return gooseDownFunc(cli.db, fsys, dir)
	case "redo":
		return gooseRedoFunc(cli.db, fsys, dir)
	case "up-to", "down-to":
		if len(args) < 2 {
			return fmt.Errorf("%s must be of form: migrate %s VERSION", command, command)
		}
		version, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("version must be a number (got '%s')", args[1])
		}
		if command == "up-to" {
			return gooseUpToFunc(cli.db, fsys, dir, version)
		}
		return gooseDownToFunc(cli.db, fsys, dir, version)
	}
	return fmt.Errorf("%q: no such command", command)
}

