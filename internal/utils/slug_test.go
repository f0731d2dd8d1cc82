package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Oral & Maxillofacial Surgery", "oral-and-maxillofacial-surgery"},
		{"  Dr. Kannan's Photo ", "dr-kannans-photo"},
		{"banner_2025 (final).v2", "banner-2025-final-v2"},
		{"Café Smile", "caf-smile"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugifyTruncatesAtWordBoundary(t *testing.T) {
	got := Slugify(strings.Repeat("implant ", 20))
	assert.LessOrEqual(t, len(got), MaxSlugLength)
	assert.False(t, strings.HasSuffix(got, "-"))
	assert.True(t, strings.HasPrefix(got, "implant-implant"))
	for _, part := range strings.Split(got, "-") {
		assert.Equal(t, "implant", part)
	}
}
