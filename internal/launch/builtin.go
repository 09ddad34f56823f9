package launch

import "fmt"

// NotepadPPServerID is the context server shipped with the extension.
const NotepadPPServerID = "notepadpp-mcp"

// BuiltinEntries returns the servers every registry starts from.
func BuiltinEntries() []Entry {
	return []Entry{
		{
			ID:          NotepadPPServerID,
			Executable:  "uv",
			Args:        []string{"run", "notepadpp_mcp.tools.server:run"},
			Description: "Notepad++ automation and control",
		},
	}
}

// Builtin returns a registry holding only the builtin servers.
func Builtin() *Registry {
	r, err := NewRegistry(BuiltinEntries()...)
	if err != nil {
		panic(fmt.Sprintf("builtin registry: %v", err))
	}
	return r
}

// Layer stacks entry sources on top of the builtin registry. Later layers
// replace earlier entries with the same identifier.
func Layer(layers ...[]Entry) (*Registry, error) {
	r := Builtin()
	for i, entries := range layers {
		next, err := r.With(entries...)
		if err != nil {
			return nil, fmt.Errorf("registry layer %d: %w", i, err)
		}
		r = next
	}
	return r, nil
}
