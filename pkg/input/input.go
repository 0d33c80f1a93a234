// Package input reads program source from a file or standard input.
package input

import (
	"fmt"
	"io"
	"os"
)

// StdinToken is the command-line value that selects standard input.
const StdinToken = "-"

// Input is a source of text: standard input, or the file at Path.
type Input struct {
	Path  string
	Stdin bool

	stdin io.Reader
}

// Parse interprets a command-line token. "-" means standard input; anything
// else is a file path.
func Parse(token string) Input {
	if token == StdinToken {
		return Input{Stdin: true}
	}
	return Input{Path: token}
}

// FromReader returns a standard-input Input that reads from r instead of
// os.Stdin.
func FromReader(r io.Reader) Input {
	return Input{Stdin: true, stdin: r}
}

func (in Input) String() string {
	if in.Stdin {
		return "<stdin>"
	}
	return in.Path
}

// ReadString returns the entire content of the input.
func (in Input) ReadString() (string, error) {
	if !in.Stdin {
		data, err := os.ReadFile(in.Path)
		if err != nil {
			return "", fmt.Errorf("cannot read from %q: %w", in.Path, err)
		}
		return string(data), nil
	}

	r := in.stdin
	if r == nil {
		r = os.Stdin
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("could not read from stdin: %w", err)
	}
	return string(data), nil
}
