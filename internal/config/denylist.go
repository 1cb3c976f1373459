package config

// DenylistRule is a built-in exclusion: visits to Domain (or any of its
// subdomains) are never stored.
type DenylistRule struct {
	Domain string
	Reason string
}

var denylistCategories = []struct {
	reason  string
	domains []string
}{
	{"banking and payments", []string{
		"chase.com", "bankofamerica.com", "wellsfargo.com", "citi.com", "capitalone.com",
		"schwab.com", "fidelity.com", "vanguard.com", "paypal.com", "venmo.com",
	}},
	{"password manager", []string{
		"1password.com", "lastpass.com", "bitwarden.com", "dashlane.com",
	}},
	{"sign-in provider", []string{
		"accounts.google.com", "login.microsoftonline.com", "login.live.com", "okta.com", "auth0.com",
	}},
	{"health portal", []string{
		"mychart.com", "kp.org", "healthcare.gov", "medicare.gov",
	}},
	{"government and tax", []string{
		"irs.gov", "ssa.gov", "login.gov", "id.me",
	}},
	{"crypto exchange", []string{
		"coinbase.com", "binance.com", "kraken.com",
	}},
	{"payroll", []string{
		"workday.com", "adp.com", "gusto.com",
	}},
}

// DefaultDenylist returns the built-in exclusions, seeded into a new
// database by its first migration.
func DefaultDenylist() []DenylistRule {
	var rules []DenylistRule
	for _, c := range denylistCategories {
		for _, d := range c.domains {
			rules = append(rules, DenylistRule{Domain: d, Reason: c.reason})
		}
	}
	return rules
}
