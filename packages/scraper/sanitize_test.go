package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty input", "", ""},
		{"whitespace only", "  \n\t ", ""},
		{"plain text", "hello world", "hello world"},
		{"strips markup", "<p>hello <b>world</b></p>", "hello world"},
		{"collapses whitespace", "  a \n\n  b\t c  ", "a b c"},
		{"nested markup", "<div><span>x</span>\n<span>y</span></div>", "x y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}
