package cli

import "io"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file (default ~/.config/recall/config.yaml)"`
	DBPath  string `long:"db-path" description:"Override the database file from the config"`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Log diagnostics to stderr"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// SearchCommand ranks stored visits against a free-text query.
type SearchCommand struct {
	Since    string `long:"since" description:"Only visits newer than duration (e.g., 7d, 24h, 2w)"`
	Until    string `long:"until" description:"Only visits older than duration"`
	Domain   string `long:"domain" description:"Only visits on this domain"`
	Limit    int    `long:"limit" description:"Maximum results (default: search.default_max_results)"`
	Context  bool   `long:"context" description:"Print results as a plain-text context block for a language model"`
	MaxChars int    `long:"max-chars" description:"Character budget for --context (default: search.max_context_chars)"`

	Args struct {
		Query []string `positional-arg-name:"query"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// DomainsCommand lists the most visited domains.
type DomainsCommand struct {
	Since string `long:"since" description:"Only visits newer than duration"`

	globals *GlobalFlags
	version string
}

// ImportCommand merges browser history exports into the store.
type ImportCommand struct {
	Args struct {
		Files []string `positional-arg-name:"file" required:"1"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// AddCommand records a single visit by hand.
type AddCommand struct {
	URL    string `long:"url" description:"URL to record (required)"`
	Title  string `long:"title" description:"Page title (required)"`
	Visits uint32 `long:"visits" description:"Visit count" default:"1"`
	At     string `long:"at" description:"Last visit as RFC 3339 time or age (e.g., 2h, 3d); default now"`

	globals *GlobalFlags
	version string
}

// OpenCommand prints one stored visit.
type OpenCommand struct {
	Format string `long:"format" description:"Output format: full | url | title" default:"full"`

	Args struct {
		URL string `positional-arg-name:"url" required:"yes"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// ForgetCommand deletes stored visits by URL.
type ForgetCommand struct {
	Args struct {
		URLs []string `positional-arg-name:"url" required:"1"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// ExclusionsCommand lists exclusion rules or adds one.
type ExclusionsCommand struct {
	AddDomain string `long:"add-domain" description:"Exclude a domain and its subdomains"`
	AddRegex  string `long:"add-regex" description:"Exclude hosts matching a regular expression"`
	Reason    string `long:"reason" description:"Note stored with the new rule" default:"user rule"`

	globals *GlobalFlags
	version string
}

// StatusCommand shows database statistics and the configuration summary.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// PruneCommand applies retention to remove old visits.
type PruneCommand struct {
	OlderThan string `long:"older-than" description:"Override retention period (e.g., 30d)"`
	DryRun    bool   `long:"dry-run" description:"Show what would be pruned without deleting"`

	globals *GlobalFlags
	version string
}

// PurgeCommand deletes every stored visit with safety confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	stdin   io.Reader // nil means os.Stdin
}

// ServeCommand runs the HTTP API.
type ServeCommand struct {
	Host string `long:"host" description:"Override server.host"`
	Port int    `long:"port" description:"Override server.port"`

	globals *GlobalFlags
	version string
}
