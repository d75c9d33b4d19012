package cmd

import (
	"testing"
)

func TestOptRe(t *testing.T) {
	tests := []struct {
		line string
		name string
	}{
		{"  -log-file filename", "log-file"},
		{"  -v\tPrint verbose diagnostics", "v"},
		{"    \tTrace log filename [default: stdin]", ""},
		{"", ""},
	}
	for _, test := range tests {
		m := optRe.FindStringSubmatch(test.line)
		if test.name == "" {
			if m != nil {
				t.Errorf("Unexpected match for %q: %v", test.line, m)
			}
			continue
		}
		if m == nil || m[1] != test.name {
			t.Errorf("Expected %q from %q, got %v", test.name, test.line, m)
		}
	}
}

type cliTestCommand struct {
	DevArgs
	VerboseArgs
	SourceArgs
}

func (c *cliTestCommand) Summary() []string { return []string{"test"} }
func (c *cliTestCommand) Add(fs *CLI) {
	c.DevArgs.Add(fs)
	c.VerboseArgs.Add(fs)
	c.SourceArgs.Add(fs)
}
func (c *cliTestCommand) Validate() error { return nil }

func TestGroupedDefaults(t *testing.T) {
	cmd := new(cliTestCommand)
	fs := NewCLI("test", cmd, "sblogz", false)
	cmd.Add(fs)

	groups := fs.getSortedDefaults(true)
	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d: %v", len(groups), groups)
	}
	// data-source sorts before development, and the rest argument is
	// documented under data-source.
	if groups[0].group != "data-source" || groups[1].group != "development" {
		t.Errorf("Bad group order: %s, %s", groups[0].group, groups[1].group)
	}
	foundRest := false
	for _, l := range groups[0].text {
		if l == "  logfile" {
			foundRest = true
		}
	}
	if !foundRest {
		t.Errorf("Rest argument missing from data-source help")
	}
}

func TestGroupRequiredBeforeRegistration(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Expected a panic for an ungrouped option")
		}
	}()
	fs := NewCLI("test", new(cliTestCommand), "sblogz", false)
	var b bool
	fs.BoolVar(&b, "stray", false, "no group set")
}
