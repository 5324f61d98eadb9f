package sales

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Ali Valiyev-20240301103005", "ali-valiyev-20240301103005"},
		{"  Müller & Söhne  ", "muller-sohne"},
		{"Ñoño!!", "nono"},
		{"---", ""},
		{"ACME Corp.", "acme-corp"},
		{"a  b   c", "a-b-c"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Slugify(tc.in), "input %q", tc.in)
	}
}
