package launch

import (
	"maps"
	"slices"
)

// LaunchSpec describes how to start a context server process.
type LaunchSpec struct {
	Executable string            `json:"command" yaml:"command"`
	Args       []string          `json:"args" yaml:"args"`
	Env        map[string]string `json:"env" yaml:"env"`
}

// Entry is one row of the registry: a server identifier and the fixed
// command it launches.
type Entry struct {
	ID          string            `json:"id" yaml:"id"`
	Executable  string            `json:"command" yaml:"command"`
	Args        []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Env         map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
}

// Spec builds a fresh LaunchSpec for the entry. The returned slices and map
// are copies; callers may modify them freely.
func (e Entry) Spec() LaunchSpec {
	args := slices.Clone(e.Args)
	if args == nil {
		args = []string{}
	}
	env := make(map[string]string, len(e.Env))
	maps.Copy(env, e.Env)
	return LaunchSpec{
		Executable: e.Executable,
		Args:       args,
		Env:        env,
	}
}

func (e Entry) clone() Entry {
	e.Args = slices.Clone(e.Args)
	if e.Env != nil {
		e.Env = maps.Clone(e.Env)
	}
	return e
}
