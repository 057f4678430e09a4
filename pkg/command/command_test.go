package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPattern(t *testing.T) {
	p := Pattern(`approve request (\d+)`)

	tests := []struct {
		text  string
		match bool
		arg   string
	}{
		{"approve request 7", true, "7"},
		{"APPROVE Request 12", true, "12"},
		{"approve request 7 please", true, "7"},
		{"approve request 7, thanks!", true, "7"},
		{"approve request 7 thank you.", true, "7"},
		{"approve request 7 pls", true, "7"},
		{"approve request 7.", true, "7"},
		{"please approve request 7", false, ""},
		{"approve request 7 now", false, ""},
		{"approve request", false, ""},
		{"approve request seven", false, ""},
		{"approve request 7 please please", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			m := p.FindStringSubmatch(tt.text)
			if !tt.match {
				assert.Nil(t, m)
				return
			}
			if assert.NotNil(t, m) {
				assert.Equal(t, tt.arg, m[1])
			}
		})
	}
}
