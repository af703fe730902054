package config

// Platform describes a supported source site. The table is static: it is
// loaded once at startup and never mutated. Order matters — the URL
// classifier scans it front to back and the first domain match wins.
type Platform struct {
	Key       string   `json:"key"`
	Label     string   `json:"label"`
	Domains   []string `json:"domains"`
	Enabled   bool     `json:"enabled"`
	Supports  []string `json:"supports"`
	Qualities []string `json:"qualityOptions"`
}

var platforms = []Platform{
	{
		Key:       "youtube",
		Label:     "YouTube",
		Domains:   []string{"youtube.com", "youtu.be"},
		Enabled:   true,
		Supports:  []string{"video", "audio"},
		Qualities: []string{"144p", "240p", "360p", "480p", "720p", "1080p"},
	},
	{
		Key:       "tiktok",
		Label:     "TikTok",
		Domains:   []string{"tiktok.com", "vm.tiktok.com"},
		Enabled:   true,
		Supports:  []string{"video", "audio"},
		Qualities: []string{"360p", "480p", "720p", "1080p"},
	},
	{
		Key:       "twitter",
		Label:     "X/Twitter",
		Domains:   []string{"twitter.com", "x.com"},
		Enabled:   true,
		Supports:  []string{"video", "audio"},
		Qualities: []string{"360p", "480p", "720p", "1080p"},
	},
	{
		Key:       "instagram",
		Label:     "Instagram",
		Domains:   []string{"instagram.com", "instagr.am"},
		Enabled:   true,
		Supports:  []string{"video", "audio"},
		Qualities: []string{"360p", "480p", "720p", "1080p"},
	},
	{
		Key:       "reddit",
		Label:     "Reddit",
		Domains:   []string{"reddit.com", "redd.it"},
		Enabled:   true,
		Supports:  []string{"video", "audio"},
		Qualities: []string{"360p", "480p", "720p", "1080p"},
	},
	{
		// Placeholder entry to illustrate upcoming platform support.
		Key:       "vimeo",
		Label:     "Vimeo",
		Domains:   []string{"vimeo.com"},
		Enabled:   false,
		Supports:  []string{"video"},
		Qualities: []string{"360p", "480p", "720p"},
	},
}

// Platforms returns the full platform table, disabled entries included.
func Platforms() []Platform {
	return platforms
}

// EnabledPlatforms returns only the platforms that are ready for use.
func EnabledPlatforms() []Platform {
	enabled := make([]Platform, 0, len(platforms))
	for _, p := range platforms {
		if p.Enabled {
			enabled = append(enabled, p)
		}
	}
	return enabled
}

// FindPlatform looks up a platform by key regardless of enabled state.
func FindPlatform(key string) (Platform, bool) {
	for _, p := range platforms {
		if p.Key == key {
			return p, true
		}
	}
	return Platform{}, false
}
