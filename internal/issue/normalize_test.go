package issue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripAccents(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "plain", want: "plain"},
		{in: "été", want: "ete"},
		{in: "Ça marche à Noël", want: "Ca marche a Noel"},
		{in: "ñandú", want: "nandu"},
		{in: "Łódź", want: "Lodz"},
		{in: "łąka", want: "laka"},
		{in: "Đakovo København", want: "Dakovo Kobenhavn"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, StripAccents(tt.in))
		})
	}
}
