package download

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/mlgridgo/internal/artifact"
	"github.com/specialistvlad/mlgridgo/internal/pipeline"
	"github.com/specialistvlad/mlgridgo/internal/testutil"
)

const sampleCSV = "Name,Weight\nbulbasaur,6.9\n"

func TestOnRunDownload_RegistersArtifact(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleCSV))
	}))
	defer server.Close()

	store, err := artifact.NewFSStore(t.TempDir())
	require.NoError(t, err)
	deps := &pipeline.Deps{Store: store, WorkDir: t.TempDir()}

	out, err := OnRunDownload(ctx, deps, &Input{
		FileURL:             server.URL + "/pokemon.csv",
		ArtifactName:        "pokemon.csv",
		ArtifactType:        "raw_data",
		ArtifactDescription: "raw file",
	})
	require.NoError(t, err)

	require.Equal(t, "pokemon.csv:v1", out.Artifact)
	require.Equal(t, 1, out.Version)

	loc, err := store.Resolve(ctx, "pokemon.csv:latest")
	require.NoError(t, err)
	require.Equal(t, "raw_data", loc.Meta.Type)

	data, err := os.ReadFile(loc.Path)
	require.NoError(t, err)
	require.Equal(t, sampleCSV, string(data))
}

func TestOnRunDownload_Non200Fails(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	store, err := artifact.NewFSStore(t.TempDir())
	require.NoError(t, err)
	deps := &pipeline.Deps{Store: store, WorkDir: t.TempDir()}

	_, err = OnRunDownload(ctx, deps, &Input{
		FileURL:      server.URL + "/missing.csv",
		ArtifactName: "pokemon.csv",
	})
	require.ErrorContains(t, err, "404")
}

func TestOnRunDownload_UnreachableServerFails(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context()

	store, err := artifact.NewFSStore(t.TempDir())
	require.NoError(t, err)
	deps := &pipeline.Deps{Store: store, WorkDir: t.TempDir()}

	_, err = OnRunDownload(ctx, deps, &Input{
		FileURL:      "http://127.0.0.1:1/pokemon.csv",
		ArtifactName: "pokemon.csv",
	})
	require.Error(t, err)

	// Nothing was registered.
	versions, err := store.Versions("pokemon.csv")
	require.NoError(t, err)
	require.Empty(t, versions)
}
