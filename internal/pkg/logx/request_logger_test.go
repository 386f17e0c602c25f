package logx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want string
	}{
		{name: "ipv4 with port", addr: "203.0.113.45:51234", want: "203.0.113.0"},
		{name: "ipv4 bare", addr: "198.51.100.7", want: "198.51.100.0"},
		{name: "loopback", addr: "127.0.0.1:8080", want: "127.0.0.1"},
		{name: "ipv6 with port", addr: "[2001:db8:abcd:12:1:2:3:4]:443", want: "2001:db8:abcd:12::"},
		{name: "garbage", addr: "not-an-ip", want: "unknown_ip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, anonymizeIP(tt.addr))
		})
	}
}
