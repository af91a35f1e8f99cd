// Package geoip resolves IP addresses to coarse geographic data.
package geoip

// Data holds the resolved location for an IP address.
type Data struct {
	Country  string `json:"country"`
	Province string `json:"province"`
	City     string `json:"city"`
}

// Unknown is the value returned when no resolution is possible.
var Unknown = Data{Country: "Unknown", Province: "Unknown", City: "Unknown"}

// Resolver looks up geographic data for an IP address. Implementations must
// be safe for concurrent callers; a failed or impossible lookup returns
// Unknown rather than an error, so enrichment never blocks a write.
type Resolver interface {
	Lookup(ip string) Data
}

// Stub is a Resolver that knows nothing.
type Stub struct{}

// Lookup always returns Unknown.
func (Stub) Lookup(ip string) Data { return Unknown }
