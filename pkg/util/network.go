package util

import (
	"net"
	"strings"
)

// IsValidIPv4CIDR checks if a string is a valid IPv4 CIDR notation
func IsValidIPv4CIDR(cidr string) bool {
	_, _, err := net.ParseCIDR(cidr)
	if err != nil {
		return false
	}
	parts := strings.Split(cidr, "/")
	ip := net.ParseIP(parts[0])
	return ip != nil && ip.To4() != nil
}

// CanonicalPrefix returns cidr with the host bits cleared, the form routing
// tables print ("10.0.0.1/24" → "10.0.0.0/24"). ok is false when cidr is not
// an IPv4 prefix.
func CanonicalPrefix(cidr string) (prefix string, ok bool) {
	if !IsValidIPv4CIDR(cidr) {
		return "", false
	}
	_, ipNet, _ := net.ParseCIDR(cidr)
	return ipNet.String(), true
}
