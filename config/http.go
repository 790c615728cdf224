package config

// HTTPConfig configures the REST API served by "promanage serve".
type HTTPConfig struct {
	Addr string `json:"addr"`
	// Token, when set, must be presented as "Authorization: Bearer <token>".
	Token string `json:"token"`
}

// SetDefaults applies sane defaults.
func (c *HTTPConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}
