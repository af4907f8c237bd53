// Package beatmap parses target-sequence sources (.osu files) into timed
// target events.
//
// Only the [HitObjects] section is read. Malformed lines are skipped rather
// than surfaced: the parser's contract is to return well-formed events only.
package beatmap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aimdrift/aimdrift/internal/domain/model"
)

const (
	sectionHeader = "[HitObjects]"
	minFields     = 3
)

// ParseFile reads a target-sequence file from disk.
func ParseFile(path string) ([]model.TargetEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open target sequence: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse extracts target events from a .osu stream in file order. A stream
// without a [HitObjects] section yields an empty slice and no error.
func Parse(r io.Reader) ([]model.TargetEvent, error) {
	var events []model.TargetEvent

	scanner := bufio.NewScanner(r)
	inSection := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, sectionHeader) {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}
		if strings.HasPrefix(line, "[") {
			// Next section begins; hit objects are done.
			break
		}

		event, ok := parseLine(line)
		if !ok {
			continue
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read target sequence: %w", err)
	}

	return events, nil
}

// parseLine decodes one hit-object line: "x,y,time,...".
func parseLine(line string) (model.TargetEvent, bool) {
	parts := strings.Split(line, ",")
	if len(parts) < minFields {
		return model.TargetEvent{}, false
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return model.TargetEvent{}, false
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return model.TargetEvent{}, false
	}
	t, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
	if err != nil {
		return model.TargetEvent{}, false
	}
	return model.TargetEvent{Time: t, X: float64(x), Y: float64(y)}, true
}
