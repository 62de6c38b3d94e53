package provision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cr625/proethica-sub007/pkg/errors"
)

func TestParseRef(t *testing.T) {
	t.Parallel()

	cases := []struct {
		id   string
		want Ref
	}{
		{"II.1.e", Ref{Roman: "II", Number: "1", Letter: "e"}},
		{"I.4", Ref{Roman: "I", Number: "4"}},
		{"III.10.a", Ref{Roman: "III", Number: "10", Letter: "a"}},
		{"iv.2.C", Ref{Roman: "iv", Number: "2", Letter: "c"}},
		{"  II.1.e  ", Ref{Roman: "II", Number: "1", Letter: "e"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.id, func(t *testing.T) {
			t.Parallel()
			got, err := ParseRef(tc.id)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseRef_Rejects(t *testing.T) {
	t.Parallel()

	for _, id := range []string{
		"",
		"II",
		"II.",
		"II.1.ee",
		"2.1.e",
		"II-1-e",
		"A.1.e",
		"II.1.e.f",
		"not a ref",
	} {
		id := id
		t.Run(id, func(t *testing.T) {
			t.Parallel()
			_, err := ParseRef(id)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeProvisionInvalid))
		})
	}
}

func TestRef_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "II.1.e", Ref{Roman: "II", Number: "1", Letter: "e"}.String())
	assert.Equal(t, "I.4", Ref{Roman: "I", Number: "4"}.String())
}
