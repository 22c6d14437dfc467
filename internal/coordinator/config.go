package coordinator

import (
	"strings"

	"github.com/magiconair/properties"
)

// LoadParticipantsFile reads a Java-.properties-style config file and
// returns the comma-separated "participants" key as a slice of base
// URLs. This is an alternative to the -participants CLI flag for
// operators who'd rather keep the node list in a file than a long
// command line (spec §6.5).
func LoadParticipantsFile(path string) ([]string, error) {
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return nil, err
	}
	raw := p.GetString("participants", "")
	return SplitParticipants(raw), nil
}

// SplitParticipants parses a comma-separated participant list,
// trimming whitespace around each entry and dropping empties.
func SplitParticipants(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
