package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// PromptForPath asks for a path on out and reads the answer from in.
// Returns the current directory if the user enters nothing.
func PromptForPath(in io.Reader, out io.Writer, label string) string {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	fmt.Fprintf(out, "%s [%s]: ", label, cwd)

	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		log.Warn().Err(err).Msg("Failed to read input, using current directory")
		return cwd
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return cwd
	}

	return input
}
