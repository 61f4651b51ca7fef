package config

// ConsoleConfig holds constants surfaced by the console read models that have
// no backing telemetry in this service.
type ConsoleConfig struct {
	// NetworkHealthPct is reported on the dashboard until mesh telemetry is ingested.
	NetworkHealthPct int `env:"CONSOLE_NETWORK_HEALTH_PCT" envDefault:"87"`

	// QuantumPairs is the number of paired relays reported on the mesh page.
	QuantumPairs int `env:"CONSOLE_QUANTUM_PAIRS" envDefault:"12"`

	// SeedDemoData loads the demo users, alerts and evidence at start-up.
	SeedDemoData bool `env:"CONSOLE_SEED_DEMO_DATA" envDefault:"true"`
}

// Sanitize clamps console values to their valid ranges.
func (c *ConsoleConfig) Sanitize() {
	if c.NetworkHealthPct < 0 {
		c.NetworkHealthPct = 0
	}
	if c.NetworkHealthPct > 100 {
		c.NetworkHealthPct = 100
	}
	if c.QuantumPairs < 0 {
		c.QuantumPairs = 0
	}
}
