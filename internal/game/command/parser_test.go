package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		denoter string
		content string
		verb    string
		argv    []string
	}{
		{"simple verb", "##", "##ping", "ping", []string{"ping"}},
		{"verb with args", "!", "!setup Fall 10 10", "setup", []string{"setup", "Fall", "10", "10"}},
		{"verb lowercased", "##", "##PING", "ping", []string{"PING"}},
		{"extra whitespace collapsed", "/", "/view   map", "view", []string{"view", "map"}},
		{"denoter only", "##", "##", "", nil},
		{"denoter and spaces", "##", "##   ", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.denoter, tt.content)
			assert.Equal(t, tt.verb, got.Verb)
			assert.Equal(t, tt.argv, got.Argv)
		})
	}
}

func TestRequestArg(t *testing.T) {
	req := Request{Argv: []string{"setup", "Fall"}}
	assert.Equal(t, "setup", req.Arg(0))
	assert.Equal(t, "Fall", req.Arg(1))
	assert.Equal(t, "", req.Arg(2))
}
