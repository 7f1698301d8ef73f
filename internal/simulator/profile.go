package simulator

// Profile holds the per-site adjustment factors applied to simulated
// readings so that different installations drift apart realistically.
// HumidityBias and MoistureBias are additive factors (scaled inside Sample),
// LightFactor multiplies the time-of-day light contribution.
type Profile struct {
	Name         string  `json:"name"`
	HumidityBias float64 `json:"humidity_bias"`
	LightFactor  float64 `json:"light_factor"`
	MoistureBias float64 `json:"moisture_bias"`
}

// ProfileTable maps location names to their adjustment profiles. Unknown
// names resolve to a neutral profile, so Lookup is total.
type ProfileTable struct {
	profiles map[string]Profile
	names    []string
}

// NewProfileTable creates a table from the given profiles, preserving order.
func NewProfileTable(profiles []Profile) *ProfileTable {
	t := &ProfileTable{
		profiles: make(map[string]Profile, len(profiles)),
		names:    make([]string, 0, len(profiles)),
	}
	for _, p := range profiles {
		if _, exists := t.profiles[p.Name]; !exists {
			t.names = append(t.names, p.Name)
		}
		t.profiles[p.Name] = p
	}
	return t
}

// DefaultTable returns the built-in set of monitored moss wall locations.
func DefaultTable() *ProfileTable {
	return NewProfileTable([]Profile{
		{Name: "Building A - Lobby", HumidityBias: 0, LightFactor: 0.8, MoistureBias: 0},
		{Name: "Building B - Facade", HumidityBias: 0.1, LightFactor: 1.2, MoistureBias: -0.1},
		{Name: "Highway Wall - Section 1", HumidityBias: -0.1, LightFactor: 1.5, MoistureBias: -0.2},
		{Name: "University Campus - Library", HumidityBias: 0.05, LightFactor: 0.6, MoistureBias: 0.1},
		{Name: "Corporate HQ - Conference Room", HumidityBias: -0.05, LightFactor: 0.7, MoistureBias: 0.05},
	})
}

// Lookup returns the profile for the named location, or a neutral profile
// carrying the requested name if the location is unknown.
func (t *ProfileTable) Lookup(name string) Profile {
	if p, ok := t.profiles[name]; ok {
		return p
	}
	return Profile{Name: name, HumidityBias: 0, LightFactor: 1, MoistureBias: 0}
}

// Names returns the configured location names in declaration order.
func (t *ProfileTable) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}
