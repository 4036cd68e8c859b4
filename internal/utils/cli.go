package utils

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
)

const DefaultPath = "./bitcask.log"

// CLIInputs are the flags shared by the bitcask commands.
type CLIInputs struct {
	Path           string
	SyncOnWrite    bool
	RepairTornTail bool
}

// HandleCLIInputs registers the common flags on fs and parses args.
func HandleCLIInputs(fs *flag.FlagSet, args []string) (*CLIInputs, error) {
	in := &CLIInputs{}
	fs.StringVar(&in.Path, "path", DefaultPath, "Path of the log file to open")
	fs.BoolVar(&in.SyncOnWrite, "sync", false, "Fsync the log after every write")
	fs.BoolVar(&in.RepairTornTail, "repair", false, "Truncate an incomplete trailing record instead of failing")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return in, nil
}

var ErrEmptyCommand = errors.New("empty command")

// SplitStringIntoCommandAndArguments splits a REPL line using shell quoting
// rules, so keys and values may contain spaces when quoted:
//
//	set "my key" 'a value'
//
// The command is lower-cased. At most two arguments are accepted.
func SplitStringIntoCommandAndArguments(line string) (cmd, key, value string, err error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return "", "", "", err
	}
	if len(words) == 0 {
		return "", "", "", ErrEmptyCommand
	}
	if len(words) > 3 {
		return "", "", "", fmt.Errorf("too many arguments: got %d, want at most 2", len(words)-1)
	}

	cmd = strings.ToLower(words[0])
	if len(words) > 1 {
		key = words[1]
	}
	if len(words) > 2 {
		value = words[2]
	}

	return cmd, key, value, nil
}
