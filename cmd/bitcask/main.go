// Command bitcask runs one-shot maintenance tasks against a log file.
//
//	bitcask -path data/app.log stats
//	bitcask -path data/app.log merge
//	bitcask -path data/app.log backup app.snappy
//	bitcask -path data/restored.log restore app.snappy
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/0xRadioAc7iv/mini-bitcask/bitcask"
	"github.com/0xRadioAc7iv/mini-bitcask/internal"
	"github.com/0xRadioAc7iv/mini-bitcask/internal/backup"
	"github.com/0xRadioAc7iv/mini-bitcask/internal/utils"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] stats|merge|backup <file>|restore <file>\n", os.Args[0])
		flag.PrintDefaults()
	}

	in, err := utils.HandleCLIInputs(flag.CommandLine, os.Args[1:])
	if err != nil {
		logrus.Fatal(err)
	}

	if err := run(in, flag.Args()); err != nil {
		logrus.WithField("path", in.Path).Fatal(err)
	}
}

func run(in *utils.CLIInputs, args []string) error {
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := &internal.Config{
		Logger:         logrus.StandardLogger(),
		SyncOnWrite:    in.SyncOnWrite,
		RepairTornTail: in.RepairTornTail,
	}

	if args[0] == "restore" {
		if len(args) != 2 {
			return errors.New("restore needs a snapshot file")
		}
		return restore(in.Path, args[1], cfg)
	}

	db, err := bitcask.Open(in.Path,
		bitcask.WithLogger(cfg.Logger),
		bitcask.WithSyncOnWrite(cfg.SyncOnWrite),
		bitcask.WithRepairTornTail(cfg.RepairTornTail),
	)
	if err != nil {
		return err
	}
	defer db.Close()

	switch args[0] {
	case "stats":
		fmt.Printf("path:  %s\nkeys:  %d\nbytes: %d\n", db.Path(), db.Len(), db.Size())
	case "merge":
		before := db.Size()
		if err := db.Merge(); err != nil {
			return err
		}
		fmt.Printf("merged %s: %d -> %d bytes\n", db.Path(), before, db.Size())
	case "backup":
		if len(args) != 2 {
			return errors.New("backup needs a snapshot file")
		}
		return writeBackup(db, args[1])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}

	return db.Close()
}

func writeBackup(db *bitcask.DB, target string) error {
	f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	n, err := backup.Write(f, db)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(target)
		return err
	}

	fmt.Printf("backed up %d keys to %s\n", n, target)
	return nil
}

func restore(path, source string, cfg *internal.Config) error {
	f, err := os.Open(source)
	if err != nil {
		return err
	}
	defer f.Close()

	db, err := backup.Restore(f, path, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("restored %d keys into %s\n", db.Len(), path)
	return db.Close()
}
