package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"

	"github.com/mrlokans/session-catalog/internal/rainfocus"
)

// LoadCredentials reads the Rainfocus credentials file. Environment
// variables RAINFOCUS_API_PROFILE_ID, RAINFOCUS_AUTH_TOKEN and
// RAINFOCUS_WIDGET_ID override values from the file. A missing file is not
// an error as long as the profile id ends up set.
func LoadCredentials(path string) (rainfocus.Credentials, error) {
	v := viper.New()
	v.SetConfigType("json")
	_ = v.BindEnv("rfapiprofileid", "RAINFOCUS_API_PROFILE_ID")
	_ = v.BindEnv("rfauthtoken", "RAINFOCUS_AUTH_TOKEN")
	_ = v.BindEnv("rfwidgetid", "RAINFOCUS_WIDGET_ID")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return rainfocus.Credentials{}, fmt.Errorf("failed to read credentials %s: %w", path, err)
		}
	}

	creds := rainfocus.Credentials{
		APIProfileID: v.GetString("rfapiprofileid"),
		AuthToken:    v.GetString("rfauthtoken"),
		WidgetID:     v.GetString("rfwidgetid"),
	}
	if creds.APIProfileID == "" {
		return creds, fmt.Errorf("%w: set rfapiprofileid in %s or RAINFOCUS_API_PROFILE_ID", rainfocus.ErrMissingProfileID, path)
	}
	return creds, nil
}
