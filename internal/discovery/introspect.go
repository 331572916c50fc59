package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/conduit-cli/conduit/internal/platform"
)

// deniedCommands are framework verbs every console application answers to.
// They are never exposed as component commands.
var deniedCommands = map[string]bool{
	"help":        true,
	"list":        true,
	"completion":  true,
	"_complete":   true,
	"test":        true,
	"inspire":     true,
	"self-update": true,
	"install":     true,
	"uninstall":   true,
}

var deniedPrefixes = []string{"make:", "app:", "stub:"}

// listOutput is the shape of `<entry> list --format=json`.
type listOutput struct {
	Application struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"application"`
	Commands []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Hidden      bool   `json:"hidden"`
	} `json:"commands"`
}

type introspection struct {
	version     string
	description string
	commands    []string
}

// introspect asks the executable for its command list.
func (d *Discoverer) introspect(ctx context.Context, entry string) (*introspection, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	code, err := d.runner.Run(ctx, platform.Command{
		Name:   entry,
		Args:   []string{"list", "--format=json"},
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return nil, fmt.Errorf("list exited with code %d: %s", code, strings.TrimSpace(stderr.String()))
	}

	var out listOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("decoding command list: %w", err)
	}

	info := &introspection{
		version:     out.Application.Version,
		description: out.Application.Name,
	}
	for _, c := range out.Commands {
		if c.Hidden || !Exposable(c.Name) {
			continue
		}
		info.commands = append(info.commands, c.Name)
	}
	return info, nil
}

// Exposable reports whether an introspected command may be published.
func Exposable(command string) bool {
	if command == "" || deniedCommands[command] {
		return false
	}
	for _, p := range deniedPrefixes {
		if strings.HasPrefix(command, p) {
			return false
		}
	}
	return true
}
