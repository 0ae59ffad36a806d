package cli

import (
	"flag"
	"fmt"
	"strings"

	"github.com/mrlokans/session-catalog/internal/config"
	"github.com/mrlokans/session-catalog/internal/events"
	"github.com/mrlokans/session-catalog/internal/rainfocus"
)

// catalogFlags are shared by every command that talks to the search API.
type catalogFlags struct {
	CredentialsPath string
	Event           string
	ProfilesPath    string
	Workers         int
	Verbose         bool
}

func (f *catalogFlags) register(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&f.CredentialsPath, "credentials", cfg.Rainfocus.CredentialsPath, "Path to the credentials JSON file (rfapiprofileid, rfauthtoken, rfwidgetid)")
	fs.StringVar(&f.Event, "event", cfg.Event.Name, "Event profile name")
	fs.StringVar(&f.ProfilesPath, "profiles", cfg.Event.ProfilesPath, "Optional YAML file with additional event profiles")
	fs.IntVar(&f.Workers, "workers", cfg.Pipeline.Workers, "Number of filter values fetched concurrently")
	fs.BoolVar(&f.Verbose, "verbose", false, "Enable verbose output")
}

// open loads credentials and the event profile and builds the API client.
func (f *catalogFlags) open(cfg *config.Config) (*rainfocus.Client, events.Profile, error) {
	registry, err := events.Load(f.ProfilesPath)
	if err != nil {
		return nil, events.Profile{}, err
	}
	profile, err := registry.Lookup(f.Event)
	if err != nil {
		return nil, events.Profile{}, fmt.Errorf("%w (known: %s)", err, strings.Join(registry.Names(), ", "))
	}

	creds, err := config.LoadCredentials(f.CredentialsPath)
	if err != nil {
		return nil, events.Profile{}, err
	}
	rfCfg := cfg.RainfocusConfig(creds)
	if err := rfCfg.Validate(); err != nil {
		return nil, events.Profile{}, err
	}
	return rainfocus.NewClient(rfCfg), profile, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
