package api_test

import (
	"testing"

	"github.com/enciclo/control/api"
	"github.com/stretchr/testify/assert"
)

func TestCurrentDomain(t *testing.T) {
	t.Parallel()
	tests := []struct {
		origin string
		want   string
	}{
		{"https://admin.enciclo.es", "enciclo.es"},
		{"https://a.b.enciclo.es:443", "enciclo.es"},
		{"http://admin.enciclo.es:80", "enciclo.es"},
		{"http://admin.enciclo.es:8080", "enciclo.es:8080"},
		{"enciclo.es", "enciclo.es"},
		{"localhost:3000", "localhost:3000"},
		{"http://127.0.0.1:3000", "127.0.0.1:3000"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, api.CurrentDomain(tt.origin))
		})
	}
}

func TestResolver_BaseURL(t *testing.T) {
	t.Parallel()

	t.Run("substitutes domain per flag", func(t *testing.T) {
		t.Parallel()
		r := api.NewResolver("https://api.{domain}/v1/", "https://tasks.{domain}/v1", "https://control.enciclo.es")
		assert.Equal(t, "https://api.enciclo.es/v1", r.BaseURL(false))
		assert.Equal(t, "https://tasks.enciclo.es/v1", r.BaseURL(true))
	})

	t.Run("long task falls back to default template", func(t *testing.T) {
		t.Parallel()
		r := api.NewResolver("https://api.{domain}", "", "enciclo.es")
		assert.Equal(t, "https://api.enciclo.es", r.BaseURL(true))
	})

	t.Run("template without placeholder is used verbatim", func(t *testing.T) {
		t.Parallel()
		r := api.NewResolver("http://127.0.0.1:9000", "", "ignored.example.com")
		assert.Equal(t, "http://127.0.0.1:9000", r.BaseURL(false))
	})
}
