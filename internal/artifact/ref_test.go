package artifact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		in        string
		want      Ref
		expectErr bool
	}{
		{name: "bare name selects latest", in: "pokemon.csv", want: Ref{Name: "pokemon.csv", Version: LatestVersion}},
		{name: "explicit latest", in: "pokemon.csv:latest", want: Ref{Name: "pokemon.csv", Version: LatestVersion}},
		{name: "explicit version", in: "pokemon.csv:v3", want: Ref{Name: "pokemon.csv", Version: 3}},
		{name: "empty name", in: ":v1", expectErr: true},
		{name: "empty string", in: "", expectErr: true},
		{name: "path separator in name", in: "dir/pokemon.csv", expectErr: true},
		{name: "selector without v prefix", in: "pokemon.csv:3", expectErr: true},
		{name: "non-numeric version", in: "pokemon.csv:vX", expectErr: true},
		{name: "zero version", in: "pokemon.csv:v0", expectErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseRef(tc.in)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestRefString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "data.csv:latest", Ref{Name: "data.csv"}.String())
	require.Equal(t, "data.csv:v2", Ref{Name: "data.csv", Version: 2}.String())
}
