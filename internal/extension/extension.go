// Package extension adapts the launch registry to the editor host's
// extension interface. The host loads registered extensions by name and asks
// them for the command behind a context server.
package extension

import (
	"fmt"
	"sort"
	"sync"

	"github.com/michaelbrown/ctxlaunch/internal/launch"
)

// ContextServerID names a context server as the host knows it.
type ContextServerID string

// Project is host-supplied metadata about the open project. Resolution does
// not inspect it.
type Project struct {
	WorktreeRoot string `json:"worktree_root,omitempty"`
}

// Command is the process description handed back to the host.
type Command struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env"`
}

// Extension is the capability the host calls when it activates a context
// server.
type Extension interface {
	ContextServerCommand(id ContextServerID, project Project) (*Command, error)
}

// ContextServers answers context-server requests from a launch resolver.
type ContextServers struct {
	resolver launch.Resolver
}

// NewContextServers returns an Extension backed by r.
func NewContextServers(r launch.Resolver) *ContextServers {
	return &ContextServers{resolver: r}
}

func (c *ContextServers) ContextServerCommand(id ContextServerID, _ Project) (*Command, error) {
	spec, err := c.resolver.Resolve(string(id))
	if err != nil {
		return nil, err
	}
	return FromSpec(spec), nil
}

// FromSpec converts a launch spec to the host's command shape.
func FromSpec(spec launch.LaunchSpec) *Command {
	return &Command{
		Command: spec.Executable,
		Args:    spec.Args,
		Env:     spec.Env,
	}
}

// Host is the extension table an editor host consults.
type Host struct {
	mu         sync.RWMutex
	extensions map[string]Extension
}

// NewHost creates an empty extension table.
func NewHost() *Host {
	return &Host{extensions: make(map[string]Extension)}
}

// Register adds an extension under name. Names are unique.
func (h *Host) Register(name string, ext Extension) error {
	if name == "" {
		return fmt.Errorf("extension name is required")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.extensions[name]; ok {
		return fmt.Errorf("extension already registered: %s", name)
	}
	h.extensions[name] = ext
	return nil
}

// Lookup returns the extension registered under name.
func (h *Host) Lookup(name string) (Extension, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ext, ok := h.extensions[name]
	if !ok {
		return nil, fmt.Errorf("unknown extension: %s", name)
	}
	return ext, nil
}

// Names lists registered extensions in sorted order.
func (h *Host) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.extensions))
	for name := range h.extensions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ContextServerCommand dispatches to the named extension.
func (h *Host) ContextServerCommand(extension string, id ContextServerID, project Project) (*Command, error) {
	ext, err := h.Lookup(extension)
	if err != nil {
		return nil, err
	}
	return ext.ContextServerCommand(id, project)
}
