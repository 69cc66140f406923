package domain

// FeatureFlags describes deployment-level toggles exposed to the frontend.
type FeatureFlags struct {
	SignupsDisabled   bool `json:"isSignupsDisabled"`
	EmailAuthDisabled bool `json:"isEmailAuthDisabled"`
}

// Contributor is a project contributor fetched from an external forge.
type Contributor struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Avatar string `json:"avatar"`
}
