package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// MaxAttempts bounds how many unrecognised answers Confirm tolerates.
const MaxAttempts = 3

// ErrNoAnswer is returned when the reader never yields a yes or no.
var ErrNoAnswer = errors.New("no yes/no answer received")

// Prompter asks yes/no questions before destructive container operations.
// Prompts are written to Out, which callers point at stderr so dataset
// output on stdout stays machine readable.
type Prompter struct {
	In  io.Reader
	Out io.Writer
}

// NewPrompter falls back to stdin and stderr for nil arguments.
func NewPrompter(in io.Reader, out io.Writer) Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stderr
	}

	return Prompter{In: in, Out: out}
}

// Confirm returns true when the user answers yes. An empty answer or EOF
// means no.
func (p Prompter) Confirm(action string, noConfirm bool) (bool, error) {
	if noConfirm {
		return true, nil
	}

	scanner := bufio.NewScanner(p.In)
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if _, err := fmt.Fprintf(p.Out, "%s? [y/N]: ", strings.TrimSuffix(action, "?")); err != nil {
			return false, err
		}

		if !scanner.Scan() {
			return false, scanner.Err()
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		}
		if _, err := fmt.Fprintln(p.Out, "Please answer yes or no."); err != nil {
			return false, err
		}
	}

	return false, fmt.Errorf("%w after %d attempts", ErrNoAnswer, MaxAttempts)
}
