package platform

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/vidgrab/vidgrab/internal/config"
)

// Classification identifies the platform a URL belongs to.
type Classification struct {
	Platform string
	Label    string
}

// Classify maps a raw URL onto a configured platform. It is pure string
// work: no network, no side effects. The platform table is scanned in
// declared order and the first domain match wins, which doubles as the
// tie-break should two platforms' domain lists ever overlap.
func Classify(rawURL string) (Classification, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return Classification{}, fmt.Errorf("Invalid URL format")
	}

	hostname := strings.TrimPrefix(parsed.Hostname(), "www.")

	for _, p := range config.Platforms() {
		for _, domain := range p.Domains {
			if !strings.Contains(hostname, domain) {
				continue
			}
			if !p.Enabled {
				return Classification{}, fmt.Errorf("Platform '%s' is not yet supported", p.Label)
			}
			return Classification{Platform: p.Key, Label: p.Label}, nil
		}
	}

	return Classification{}, fmt.Errorf("URL domain is not recognized")
}
