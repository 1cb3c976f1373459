package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/recall/internal/storage"
)

type exclusionJSON struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Reason    string `json:"reason"`
	IsDefault bool   `json:"is_default"`
}

// Execute implements the go-flags Commander interface for ExclusionsCommand.
func (c *ExclusionsCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWith(sess)
}

func (c *ExclusionsCommand) executeWith(sess *session) error {
	ctx := context.Background()

	if c.AddDomain != "" && c.AddRegex != "" {
		return fmt.Errorf("--add-domain and --add-regex are mutually exclusive")
	}

	var rule *storage.Exclusion
	switch {
	case c.AddDomain != "":
		rule = &storage.Exclusion{Type: storage.RuleDomain, Value: c.AddDomain, Reason: c.Reason}
	case c.AddRegex != "":
		rule = &storage.Exclusion{Type: storage.RuleRegex, Value: c.AddRegex, Reason: c.Reason}
	}
	if rule != nil {
		if err := sess.store.AddExclusion(ctx, *rule); err != nil {
			return err
		}
		if c.globals == nil || !c.globals.JSON {
			fmt.Printf("Added %s rule: %s\n", rule.Type, rule.Value)
			return nil
		}
	}

	rules, err := sess.store.ListExclusions(ctx)
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		out := make([]exclusionJSON, len(rules))
		for i, r := range rules {
			out[i] = exclusionJSON{Type: string(r.Type), Value: r.Value, Reason: r.Reason, IsDefault: r.IsDefault}
		}
		return printJSON(map[string]any{"count": len(out), "exclusions": out})
	}

	for _, r := range rules {
		origin := "user"
		if r.IsDefault {
			origin = "built-in"
		}
		fmt.Printf("  %-6s %-32s %-9s %s\n", r.Type, r.Value, origin, r.Reason)
	}
	fmt.Printf("\n%d %s\n", len(rules), plural(int64(len(rules)), "rule", "rules"))
	return nil
}
