package osuapi

// Config holds configuration for the upstream catalogue api client.
type Config struct {
	// BaseURL is the root of the catalogue api.
	BaseURL string `mapstructure:"base_url" default:"https://osu.ppy.sh/api/v2"`
	// Key is the api token sent with every request. Optional for mirrors.
	Key string `mapstructure:"key" default:""`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"15"`
	// RequestsPerMinute caps the request rate against the upstream api.
	// The api is rate limited on their side; staying under the cap avoids
	// getting the whole server throttled.
	RequestsPerMinute int `mapstructure:"requests_per_minute" default:"60"`
	// Retries is the number of attempts for a failing request.
	Retries int `mapstructure:"retries" default:"3"`
}
