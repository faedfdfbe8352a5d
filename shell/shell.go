// Package shell is the interactive REPL built on top of the volume engine: the
// tokenizer, prompt loop, and silent-error policy spec section 6 calls out as external
// collaborators of the core.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	fserrors "github.com/gofat32/fat32shell/errors"
	"github.com/gofat32/fat32shell/volume"
)

// Shell holds the mounted volume and the current working location, and drives the
// read-eval-print loop over an input/output pair.
type Shell struct {
	vol *volume.Volume
	cwd volume.Location
	out io.Writer
}

// New returns a Shell rooted at the volume's root directory.
func New(vol *volume.Volume, out io.Writer) *Shell {
	return &Shell{
		vol: vol,
		cwd: volume.Location{Cluster: volume.RootCluster, Path: "/"},
		out: out,
	}
}

// Run reads commands from in, one line at a time, printing the prompt before each read
// and terminating on EOF, a "quit" command, or any non-silent error from the core. It
// returns that fatal error, or nil on a clean exit.
func (s *Shell) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprintf(s.out, "%s>", s.cwd.Path)

		if !scanner.Scan() {
			return scanner.Err()
		}

		cmd, ok := tokenize(scanner.Text())
		if !ok {
			continue
		}
		if cmd.name == "quit" {
			return nil
		}

		if err := s.dispatch(cmd); err != nil {
			return err
		}
	}
}

// command is the tagged structured value spec section 6 describes the tokenizer as
// producing: a command name, an optional `-l` flag (only meaningful to `ls`), and a
// path argument.
type command struct {
	name string
	long bool
	path string
}

// tokenize splits a line on whitespace, recognizing a leading `-l` for `ls` among its
// remaining tokens. ok is false for a blank line (reprint the prompt, do nothing else).
func tokenize(line string) (command, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, false
	}

	cmd := command{name: fields[0]}
	rest := fields[1:]

	if cmd.name == "ls" && len(rest) > 0 && rest[0] == "-l" {
		cmd.long = true
		rest = rest[1:]
	}

	cmd.path = strings.Join(rest, " ")
	return cmd, true
}

// dispatch runs one command against the mounted volume, applying the silent-error
// policy of spec section 7: ErrNotFound/ErrExists from cd/mkdir/touch are swallowed,
// everything else is fatal.
func (s *Shell) dispatch(cmd command) error {
	switch cmd.name {
	case "cd":
		return s.cd(cmd.path)
	case "ls":
		return s.ls(cmd.path, cmd.long)
	case "cat":
		return s.cat(cmd.path)
	case "mkdir":
		return s.mkdir(cmd.path)
	case "touch":
		return s.touch(cmd.path)
	default:
		// Unrecognized command names are not part of the grammar; per the external
		// tokenizer's remit, treat the line as a silent no-op rather than a fatal error.
		return nil
	}
}

func (s *Shell) cd(path string) error {
	if path == "" {
		return nil
	}
	loc, err := s.vol.Resolve(s.cwd.Cluster, s.cwd.Path, path)
	if silenced(err) {
		return nil
	}
	if err != nil {
		return err
	}
	s.cwd = loc
	return nil
}

func (s *Shell) ls(path string, long bool) error {
	cluster := s.cwd.Cluster
	if path != "" {
		loc, err := s.vol.Resolve(s.cwd.Cluster, s.cwd.Path, path)
		if silenced(err) {
			return nil
		}
		if err != nil {
			return err
		}
		cluster = loc.Cluster
	}

	entries, err := s.vol.List(cluster)
	if err != nil {
		return err
	}

	if long {
		fmt.Fprint(s.out, volume.FormatLong(entries))
	} else {
		fmt.Fprint(s.out, volume.FormatPlain(entries))
	}
	return nil
}

func (s *Shell) cat(path string) error {
	if path == "" {
		return nil
	}
	dir, name := splitDirAndName(path)
	loc, err := s.vol.Resolve(s.cwd.Cluster, s.cwd.Path, dir)
	if silenced(err) {
		return nil
	}
	if err != nil {
		return err
	}

	data, err := s.vol.ReadFile(loc.Cluster, name)
	if silenced(err) {
		return nil
	}
	if err != nil {
		return err
	}

	_, writeErr := s.out.Write(data)
	return writeErr
}

func (s *Shell) mkdir(path string) error {
	if path == "" {
		return nil
	}
	dir, name := splitDirAndName(path)
	loc, err := s.vol.Resolve(s.cwd.Cluster, s.cwd.Path, dir)
	if silenced(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := s.vol.Resolve(loc.Cluster, loc.Path, name); err == nil {
		return nil // already exists: silent no-op
	}

	_, err = s.vol.CreateDirectory(loc.Cluster, loc.Path, name)
	if silenced(err) {
		return nil
	}
	return err
}

func (s *Shell) touch(path string) error {
	if path == "" {
		return nil
	}
	dir, name := splitDirAndName(path)
	loc, err := s.vol.Resolve(s.cwd.Cluster, s.cwd.Path, dir)
	if silenced(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := s.vol.Resolve(loc.Cluster, loc.Path, name); err == nil {
		return nil // already exists: silent no-op
	}

	_, err = s.vol.CreateFile(loc.Cluster, loc.Path, name)
	if silenced(err) {
		return nil
	}
	return err
}

// splitDirAndName splits a path argument into the directory to resolve and the final
// component to operate on, so mkdir/touch/cat can resolve the parent once and then
// check/create the leaf themselves.
func splitDirAndName(path string) (dir, name string) {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ".", path
	}
	if idx == 0 {
		return "/", path[1:]
	}
	return path[:idx], path[idx+1:]
}

// silenced reports whether err is one of the two conditions spec section 7 designates
// a silent no-op rather than a fatal shell error.
func silenced(err error) bool {
	return errors.Is(err, fserrors.ErrNotFound) || errors.Is(err, fserrors.ErrExists)
}
