package pdftext

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/bszet/vertretungsbot/model"
)

// Command runs an external extraction helper for every document.
type Command struct {
	Name string
	Args []string
}

// Extract feeds the raw document to the helper and decodes its page
// stream.
func (c Command) Extract(ctx context.Context, raw []byte) ([]model.Page, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = bytes.NewReader(raw)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("running %s: %w: %s", c.Name, err, stderr.String())
		}
		return nil, fmt.Errorf("running %s: %w", c.Name, err)
	}

	var pages []model.Page
	if err := json.Unmarshal(out, &pages); err != nil {
		return nil, fmt.Errorf("decoding %s output: %w", c.Name, err)
	}
	return pages, nil
}
