// Command tfs is an interactive shell over a single in-memory tfs.FS
// instance. Since the store has no on-disk image and lives only for the
// process's lifetime, the shell reads one line of commands at a time and
// runs them against the same store, the way the teacher's sqfs command
// drives one opened archive per invocation.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-ncalo/tfs"
	"github.com/go-ncalo/tfs/config"
	"github.com/go-ncalo/tfs/internal/export"
)

const usage = `tfs - interactive shell over an in-memory tfs store

Commands:
  write <path> <text>     create/open <path> and write <text> to it
  append <path> <text>    open <path> with append and write <text>
  cat <path>              read <path> in full and print it
  ls                      list the root directory's entries
  export <path> <host>    copy <path> out to a host file at <host>
  dump <host>             snapshot every file to an xz tarball at <host>
  help                    show this message
  quit                    exit

Commands are read one per line from stdin.
`

func main() {
	fsys, err := tfs.New(config.Default())
	if err != nil {
		fmt.Fprintf(os.Stderr, "tfs: %s\n", err)
		os.Exit(1)
	}
	defer fsys.Close()

	fmt.Print(usage)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("tfs> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := dispatch(fsys, line); err != nil {
			if err == errQuit {
				return
			}
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
	}
}

var errQuit = fmt.Errorf("quit")

func dispatch(fsys *tfs.FS, line string) error {
	fields := strings.SplitN(line, " ", 3)
	switch fields[0] {
	case "write":
		if len(fields) < 3 {
			return fmt.Errorf("usage: write <path> <text>")
		}
		return writeFile(fsys, fields[1], fields[2], 0)

	case "append":
		if len(fields) < 3 {
			return fmt.Errorf("usage: append <path> <text>")
		}
		return writeFile(fsys, fields[1], fields[2], tfs.OAppend)

	case "cat":
		if len(fields) < 2 {
			return fmt.Errorf("usage: cat <path>")
		}
		return catFile(fsys, fields[1])

	case "ls":
		return listFiles(fsys)

	case "export":
		if len(fields) < 3 {
			return fmt.Errorf("usage: export <path> <host>")
		}
		return export.CopyToExternal(fsys, fields[1], fields[2])

	case "dump":
		if len(fields) < 2 {
			return fmt.Errorf("usage: dump <host>")
		}
		return export.DumpDirectory(fsys, fields[1])

	case "help":
		fmt.Print(usage)
		return nil

	case "quit", "exit":
		return errQuit

	default:
		return fmt.Errorf("unknown command %q (try 'help')", fields[0])
	}
}

func writeFile(fsys *tfs.FS, path, text string, extra tfs.OpenFlag) error {
	handle, err := fsys.Open(path, tfs.OCreat|extra)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer fsys.CloseHandle(handle)

	n, err := fsys.Write(handle, []byte(text))
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("wrote %d byte(s)\n", n)
	return nil
}

func catFile(fsys *tfs.FS, path string) error {
	handle, err := fsys.Open(path, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer fsys.CloseHandle(handle)

	buf := make([]byte, fsys.Config().Capacity())
	n, err := fsys.Read(handle, buf)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	_, err = io.Copy(os.Stdout, strings.NewReader(string(buf[:n])+"\n"))
	return err
}

func listFiles(fsys *tfs.FS) error {
	for _, e := range fsys.Entries() {
		fmt.Printf("%6s  %s\n", strconv.Itoa(e.Inumber), e.Name)
	}
	return nil
}
