package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/streamingfast/dstore"
)

func readFile(ctx context.Context, url string, f func(line string) error) error {
	reader, _, _, err := dstore.OpenObject(ctx, url)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer reader.Close()

	return readLines(reader, f)
}

// readLines calls f for every non blank line, a last line without a
// trailing newline included.
func readLines(reader io.Reader, f func(line string) error) error {
	bufReader := bufio.NewReader(reader)
	lineNum := 0
	for {
		line, err := bufReader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("reading line %d: %w", lineNum+1, err)
		}
		lineNum++

		if trimmed := strings.TrimSpace(line); trimmed != "" {
			if err := f(trimmed); err != nil {
				return fmt.Errorf("error processing line %d: %w", lineNum, err)
			}
		}

		if err == io.EOF {
			return nil
		}
	}
}
