package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/0xRadioAc7iv/mini-bitcask/bitcask"
	"github.com/0xRadioAc7iv/mini-bitcask/internal/utils"
)

const helpString = `
Available Commands:

GET <key>
  Retrieve the value associated with the key.
  Response: value | nil

SET <key> <value>
  Store a value for the given key. Quote keys or values containing spaces.
  Response: ok

DELETE <key>
  Delete the key and its value.
  Response: ok

EXISTS <key>
  Check if a key exists.
  Response: true | false

COUNT
  Return the total number of live keys.

SCAN [start] [end]
  List keys and values with start <= key < end, in order.

PREFIX <prefix>
  List keys and values starting with prefix, in order.

MERGE
  Compact the log so it only holds live keys.

SYNC
  Flush the log to disk.

HELP
  Show this help message.

EXIT
  Close the store and quit.
`

func main() {
	in, err := utils.HandleCLIInputs(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	db, err := bitcask.Open(in.Path,
		bitcask.WithLogger(logger),
		bitcask.WithSyncOnWrite(in.SyncOnWrite),
		bitcask.WithRepairTornTail(in.RepairTornTail),
	)
	if err != nil {
		log.Fatal(err)
	}

	var mu sync.Mutex
	utils.OnInterruptOrKill(func(os.Signal) {
		mu.Lock()
		if err := db.Close(); err != nil {
			fmt.Println("close error:", err)
		}
		os.Exit(130)
	})

	fmt.Printf("Opened %s (%d keys)\n", in.Path, db.Len())
	fmt.Println("Type commands. 'help' for information or 'exit' to quit.")

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("> ")

		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				fmt.Println("input error:", err)
			}
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		cmd, key, value, err := utils.SplitStringIntoCommandAndArguments(line)
		if err != nil {
			fmt.Println("parse error:", err)
			continue
		}
		if cmd == "exit" {
			break
		}

		mu.Lock()
		resp, err := execute(db, cmd, key, value)
		mu.Unlock()
		if err != nil {
			fmt.Println("error:", err)
			continue
		}

		fmt.Println(resp)
	}

	mu.Lock()
	defer mu.Unlock()
	if err := db.Close(); err != nil {
		log.Fatal(err)
	}
}

func execute(db *bitcask.DB, cmd, key, value string) (string, error) {
	switch cmd {
	case "get":
		val, err := db.Get([]byte(key))
		if errors.Is(err, bitcask.ErrKeyNotFound) {
			return "nil", nil
		}
		return string(val), err
	case "set":
		return "ok", db.Set([]byte(key), []byte(value))
	case "delete":
		return "ok", db.Delete([]byte(key))
	case "exists":
		return strconv.FormatBool(db.Has([]byte(key))), nil
	case "count":
		return strconv.Itoa(db.Len()), nil
	case "scan":
		start, end := bitcask.Unbounded(), bitcask.Unbounded()
		if key != "" {
			start = bitcask.Included([]byte(key))
		}
		if value != "" {
			end = bitcask.Excluded([]byte(value))
		}
		return list(db.Scan(start, end))
	case "prefix":
		return list(db.ScanPrefix([]byte(key)))
	case "merge":
		before := db.Size()
		if err := db.Merge(); err != nil {
			return "", err
		}
		return fmt.Sprintf("merged: %d -> %d bytes", before, db.Size()), nil
	case "sync":
		return "ok", db.Sync()
	case "help":
		return strings.TrimSpace(helpString), nil
	default:
		return "Invalid Command", nil
	}
}

func list(it *bitcask.ScanIterator) (string, error) {
	defer it.Release()

	var sb strings.Builder
	for it.Next() {
		fmt.Fprintf(&sb, "%q = %q\n", it.Key(), it.Value())
	}
	if err := it.Err(); err != nil {
		return "", err
	}

	if sb.Len() == 0 {
		return "nil", nil
	}
	return strings.TrimSuffix(sb.String(), "\n"), nil
}
