package logx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := map[string]string{
		"192.168.1.77:5000":           "192.168.1.0",
		"203.0.113.9":                 "203.0.113.0",
		"127.0.0.1:80":                "127.0.0.1",
		"[::1]:443":                   "127.0.0.1",
		"2001:db8:1:2:3:4:5:6":        "2001:db8:1:2::",
		"[2001:db8:1:2:3:4:5:6]:8080": "2001:db8:1:2::",
		"garbage":                     "unknown_ip",
		"":                            "unknown_ip",
	}

	for in, want := range tests {
		assert.Equal(t, want, AnonymizeIP(in), "input %q", in)
	}
}
