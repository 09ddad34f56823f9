package launch_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelbrown/ctxlaunch/internal/launch"
)

func TestResolveBuiltin(t *testing.T) {
	r := launch.Builtin()

	spec, err := r.Resolve("notepadpp-mcp")
	require.NoError(t, err)

	assert.Equal(t, "uv", spec.Executable)
	assert.Equal(t, []string{"run", "notepadpp_mcp.tools.server:run"}, spec.Args)
	assert.NotNil(t, spec.Env)
	assert.Empty(t, spec.Env)
}

func TestResolveUnknown(t *testing.T) {
	r := launch.Builtin()

	for _, id := range []string{
		"",
		"random-unregistered-name",
		"NOTEPADPP-MCP",
		" notepadpp-mcp",
		"notepadpp-mcp\n",
		"ünïcødé/☃",
	} {
		t.Run(id, func(t *testing.T) {
			spec, err := r.Resolve(id)
			require.Error(t, err)
			assert.Equal(t, launch.LaunchSpec{}, spec)

			var unknown *launch.UnknownServerError
			require.ErrorAs(t, err, &unknown)
			assert.Equal(t, id, unknown.ID)
			assert.Equal(t, "Unknown server: "+id, err.Error())
			assert.ErrorIs(t, err, launch.ErrUnknownServer)
		})
	}
}

func TestResolveDeterministic(t *testing.T) {
	r := launch.Builtin()

	first, err := r.Resolve(launch.NotepadPPServerID)
	require.NoError(t, err)
	second, err := r.Resolve(launch.NotepadPPServerID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, launch.Equal(first, second))
}

func TestResolveReturnsFreshCopies(t *testing.T) {
	r := launch.Builtin()

	spec, err := r.Resolve(launch.NotepadPPServerID)
	require.NoError(t, err)
	spec.Args[0] = "mutated"
	spec.Env["INJECTED"] = "1"

	again, err := r.Resolve(launch.NotepadPPServerID)
	require.NoError(t, err)
	assert.Equal(t, "run", again.Args[0])
	assert.Empty(t, again.Env)
}

func TestRegistryDoesNotAliasInput(t *testing.T) {
	args := []string{"serve"}
	env := map[string]string{"TOKEN": "a"}
	r, err := launch.NewRegistry(launch.Entry{ID: "x", Executable: "x-server", Args: args, Env: env})
	require.NoError(t, err)

	args[0] = "changed"
	env["TOKEN"] = "b"

	spec, err := r.Resolve("x")
	require.NoError(t, err)
	assert.Equal(t, []string{"serve"}, spec.Args)
	assert.Equal(t, map[string]string{"TOKEN": "a"}, spec.Env)
}

func TestRegistryMultipleEntries(t *testing.T) {
	r, err := launch.NewRegistry(
		launch.Entry{ID: "a", Executable: "npx", Args: []string{"-y", "a-server"}},
		launch.Entry{ID: "b", Executable: "docker", Args: []string{"run", "-i", "b"}, Env: map[string]string{"B_TOKEN": "secret"}},
	)
	require.NoError(t, err)

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"a", "b"}, r.IDs())

	spec, err := r.Resolve("b")
	require.NoError(t, err)
	assert.Equal(t, "docker", spec.Executable)
	assert.Equal(t, map[string]string{"B_TOKEN": "secret"}, spec.Env)

	_, err = r.Resolve("c")
	assert.ErrorIs(t, err, launch.ErrUnknownServer)
}

func TestNewRegistryValidation(t *testing.T) {
	_, err := launch.NewRegistry(launch.Entry{Executable: "uv"})
	assert.ErrorIs(t, err, launch.ErrInvalidEntry)

	_, err = launch.NewRegistry(launch.Entry{ID: "x"})
	assert.ErrorIs(t, err, launch.ErrInvalidEntry)

	_, err = launch.NewRegistry(
		launch.Entry{ID: "x", Executable: "a"},
		launch.Entry{ID: "x", Executable: "b"},
	)
	assert.ErrorIs(t, err, launch.ErrDuplicateServer)
}

func TestWithOverrides(t *testing.T) {
	base := launch.Builtin()

	r, err := base.With(
		launch.Entry{ID: launch.NotepadPPServerID, Executable: "uvx", Args: []string{"notepadpp-mcp"}},
		launch.Entry{ID: "extra", Executable: "extra-server"},
	)
	require.NoError(t, err)

	spec, err := r.Resolve(launch.NotepadPPServerID)
	require.NoError(t, err)
	assert.Equal(t, "uvx", spec.Executable)
	assert.True(t, r.Contains("extra"))

	// base is unchanged
	spec, err = base.Resolve(launch.NotepadPPServerID)
	require.NoError(t, err)
	assert.Equal(t, "uv", spec.Executable)
	assert.False(t, base.Contains("extra"))
}

func TestLayer(t *testing.T) {
	r, err := launch.Layer(
		[]launch.Entry{{ID: "cfg", Executable: "from-config"}},
		[]launch.Entry{{ID: "cfg", Executable: "from-store"}},
	)
	require.NoError(t, err)

	spec, err := r.Resolve("cfg")
	require.NoError(t, err)
	assert.Equal(t, "from-store", spec.Executable)
	assert.True(t, r.Contains(launch.NotepadPPServerID))

	_, err = launch.Layer([]launch.Entry{{ID: "bad"}})
	assert.ErrorIs(t, err, launch.ErrInvalidEntry)
}

func TestWithout(t *testing.T) {
	base, err := launch.Layer([]launch.Entry{{ID: "keep", Executable: "keep-server"}})
	require.NoError(t, err)

	r := base.Without(launch.NotepadPPServerID, "never-registered")
	assert.Equal(t, []string{"keep"}, r.IDs())

	_, err = r.Resolve(launch.NotepadPPServerID)
	assert.EqualError(t, err, "Unknown server: notepadpp-mcp")

	// base is unchanged
	assert.True(t, base.Contains(launch.NotepadPPServerID))
	assert.Equal(t, 2, base.Len())
}

func TestLookup(t *testing.T) {
	r := launch.Builtin()

	e, ok := r.Lookup(launch.NotepadPPServerID)
	require.True(t, ok)
	assert.NotEmpty(t, e.Description)
	e.Args[0] = "mutated"

	e2, _ := r.Lookup(launch.NotepadPPServerID)
	assert.Equal(t, "run", e2.Args[0])

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}

func TestResolveConcurrent(t *testing.T) {
	r := launch.Builtin()

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := launch.NotepadPPServerID
			if i%2 == 1 {
				id = "missing"
			}
			spec, err := r.Resolve(id)
			if id == "missing" {
				if !errors.Is(err, launch.ErrUnknownServer) {
					errs <- err
				}
				return
			}
			if err != nil || spec.Executable != "uv" {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent resolve: %v", err)
	}
}
