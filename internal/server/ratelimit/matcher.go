package ratelimit

import "strings"

// MatchEndpoint finds the endpoint configuration matching the given path
// and method. Exact matches win over prefix matches.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	for i := range configs {
		c := &configs[i]
		if c.Path == path && (c.Method == "" || c.Method == method) {
			return c
		}
	}
	for i := range configs {
		c := &configs[i]
		if strings.HasPrefix(path, c.Path+"/") && (c.Method == "" || c.Method == method) {
			return c
		}
	}
	return nil
}
