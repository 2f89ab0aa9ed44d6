package ppx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorldSpecsTOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.toml")

	specs := MakeWorldSpecs2D()
	specs.Integrator.Tableau = TableauNameRK4
	specs.Integrator.Timestep = 5e-4
	specs.Constraints.VelocityIterations = 16
	specs.Collision.DetectionMethod = DetectionNameBruteForce
	specs.Collision.QuadTree.MaxEntities = 20
	specs.Islands.Enabled = false

	require.NoError(t, SaveWorldSpecs(specs, path))
	loaded, err := LoadWorldSpecs(path)
	require.NoError(t, err)
	require.Equal(t, specs, loaded)
}

func TestLoadWorldSpecsMissingFileYieldsDefaults(t *testing.T) {
	loaded, err := LoadWorldSpecs(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.Equal(t, MakeWorldSpecs2D(), loaded)
}

func TestLoadWorldSpecsPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.toml")
	require.NoError(t, os.WriteFile(path, []byte("[integrator]\ntimestep = 0.01\n"), 0o644))

	loaded, err := LoadWorldSpecs(path)
	require.NoError(t, err)
	require.Equal(t, 0.01, loaded.Integrator.Timestep)

	defaults := MakeWorldSpecs2D()
	require.Equal(t, defaults.Constraints, loaded.Constraints)
	require.Equal(t, defaults.Collision, loaded.Collision)
	require.Equal(t, defaults.Islands, loaded.Islands)
}

func TestLoadWorldSpecsRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.toml")
	require.NoError(t, os.WriteFile(path, []byte("[integrator]\ntableau = \"rk4\"\nbogus = 3\n"), 0o644))

	_, err := LoadWorldSpecs(path)
	require.ErrorIs(t, err, ErrInvalidSpecs)
}

func TestTableauNames(t *testing.T) {
	for _, name := range []TableauName{
		TableauNameRK1, TableauNameRK2, TableauNameRK4,
		TableauNameRK38, TableauNameRKF12, TableauNameRKF45,
	} {
		tableau, err := name.toTableau()
		require.NoError(t, err)
		require.Greater(t, tableau.Stages, 0)
	}

	_, err := TableauName("euler").toTableau()
	require.ErrorIs(t, err, ErrInvalidSpecs)

	// The zero value falls back to the explicit Euler tableau.
	tableau, err := TableauName("").toTableau()
	require.NoError(t, err)
	require.Equal(t, 1, tableau.Stages)
}
