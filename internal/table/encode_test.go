package table

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncoding_NumericAndCategoricalColumns(t *testing.T) {
	t.Parallel()

	train := &Table{
		Columns: []string{"Type1", "Height", "Weight"},
		Rows: [][]string{
			{"grass", "0.7", "6.9"},
			{"fire", "0.6", "8.5"},
			{"grass", "1.0", "13.0"},
		},
	}

	enc, err := NewEncoding(train, "Weight")
	require.NoError(t, err)
	require.Equal(t, []string{"Type1", "Height"}, enc.Features)

	x, y, err := enc.Transform(train)
	require.NoError(t, err)
	require.Equal(t, []float64{6.9, 8.5, 13.0}, y)

	// Type1 is categorical: codes assigned in first-seen order. Height
	// passes through as-is.
	require.Equal(t, [][]float64{
		{0, 0.7},
		{1, 0.6},
		{0, 1.0},
	}, x)
}

func TestEncoding_SharedCodesAcrossPartitions(t *testing.T) {
	t.Parallel()

	train := &Table{
		Columns: []string{"Type1", "Weight"},
		Rows:    [][]string{{"grass", "6.9"}, {"fire", "8.5"}},
	}
	test := &Table{
		Columns: []string{"Type1", "Weight"},
		Rows:    [][]string{{"fire", "9.1"}, {"water", "9.0"}},
	}

	enc, err := NewEncoding(train, "Weight")
	require.NoError(t, err)

	_, _, err = enc.Transform(train)
	require.NoError(t, err)
	x, _, err := enc.Transform(test)
	require.NoError(t, err)

	// "fire" keeps the code it got from the training partition; the unseen
	// "water" extends the shared table.
	require.Equal(t, [][]float64{{1}, {2}}, x)
}

func TestEncoding_Errors(t *testing.T) {
	t.Parallel()

	tbl := &Table{
		Columns: []string{"Type1", "Weight"},
		Rows:    [][]string{{"grass", "heavy"}},
	}

	_, err := NewEncoding(tbl, "NoSuchColumn")
	require.Error(t, err)

	enc, err := NewEncoding(tbl, "Weight")
	require.NoError(t, err)
	_, _, err = enc.Transform(tbl)
	require.ErrorContains(t, err, "not numeric")
}
