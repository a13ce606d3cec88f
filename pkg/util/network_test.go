package util

import "testing"

func TestIsValidIPv4CIDR(t *testing.T) {
	tests := []struct {
		name string
		cidr string
		want bool
	}{
		{"valid /24", "192.168.1.0/24", true},
		{"valid /32", "10.0.0.1/32", true},
		{"valid /0", "0.0.0.0/0", true},
		{"invalid - no mask", "192.168.1.1", false},
		{"invalid - bad IP", "999.1.1.1/24", false},
		{"invalid - bad mask", "192.168.1.0/33", false},
		{"invalid - ipv6", "2001:db8::/32", false},
		{"invalid - empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidIPv4CIDR(tt.cidr)
			if got != tt.want {
				t.Errorf("IsValidIPv4CIDR(%q) = %v, want %v", tt.cidr, got, tt.want)
			}
		})
	}
}

func TestCanonicalPrefix(t *testing.T) {
	tests := []struct {
		cidr   string
		want   string
		wantOK bool
	}{
		{"10.0.0.0/24", "10.0.0.0/24", true},
		{"10.0.0.1/24", "10.0.0.0/24", true},
		{"192.168.7.9/32", "192.168.7.9/32", true},
		{"10.0.0.0", "", false},
		{"leaf-net", "", false},
	}
	for _, tt := range tests {
		got, ok := CanonicalPrefix(tt.cidr)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("CanonicalPrefix(%q) = %q, %t; want %q, %t", tt.cidr, got, ok, tt.want, tt.wantOK)
		}
	}
}
