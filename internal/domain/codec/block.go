package codec

import (
	"fmt"
	"strings"

	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/model"
)

// FormatBlock renders ordered groups. Empty groups are skipped so no stray
// separators are produced.
func FormatBlock(groups [][]model.Event) (string, error) {
	rendered := make([]string, 0, len(groups))
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		lines := make([]string, len(group))
		for i, e := range group {
			line, err := Format(e)
			if err != nil {
				return "", err
			}
			lines[i] = line + "\n"
		}
		rendered = append(rendered, strings.Join(lines, EventSeparator))
	}
	return strings.Join(rendered, "\n"+EventSeparator), nil
}

// FieldValue wraps a block the way it is stored in the template parameter: it
// starts and ends on a new line so the wiki editor shows one event per line.
func FieldValue(groups [][]model.Event) (string, error) {
	block, err := FormatBlock(groups)
	if err != nil {
		return "", err
	}
	return "\n" + block + "\n", nil
}

// ParseBlock reads every event of a stored field. Blank entries are ignored. The
// first malformed record aborts the parse.
func ParseBlock(text string) ([]model.Event, error) {
	var events []model.Event
	for i, raw := range strings.Split(text, EventSeparator) {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		e, err := Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		events = append(events, e)
	}
	return events, nil
}
