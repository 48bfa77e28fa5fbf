package backend

import (
	"fmt"

	"casinha/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}
	target := SubmitTarget(appConfig.SubmitTarget)
	if !target.IsValid() {
		return Config{}, fmt.Errorf("invalid submit target in config: %s", appConfig.SubmitTarget)
	}

	return Config{
		Type:   backendType,
		Target: target,

		DataDirectory: appConfig.DataDirectory,
		DataSheetURL:  appConfig.DataSheetURL,
		ManualSheet:   appConfig.SheetNameManual,
		BotSheet:      appConfig.SheetNameBot,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
		GoogleOAuthClientFile:    appConfig.GoogleOAuthClientFile,
		GoogleOAuthTokenFile:     appConfig.GoogleOAuthTokenFile,
		GoogleOAuthClientJSON:    appConfig.GoogleOAuthClientJSON,
		GoogleOAuthTokenJSON:     appConfig.GoogleOAuthTokenJSON,

		FormsURL:              appConfig.FormsURL,
		FormsFieldType:        appConfig.FormsFieldType,
		FormsFieldAmount:      appConfig.FormsFieldAmount,
		FormsFieldDescription: appConfig.FormsFieldDescription,
		FormsFieldBuyer:       appConfig.FormsFieldBuyer,

		CacheTTL: appConfig.SnapshotCacheTTL,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if !c.Target.IsValid() {
		return fmt.Errorf("invalid submit target: %s", c.Target)
	}

	switch c.Type {
	case CSVBackend:
		if c.DataSheetURL == "" {
			return fmt.Errorf("data sheet URL is required for csv backend")
		}
		if c.Target == BackendTarget {
			return fmt.Errorf("csv backend cannot store entries, use the forms target")
		}
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets backend")
		}
	case MemoryBackend:
		// DataDirectory defaults to "data" if empty
	}

	if c.Type != MemoryBackend && (c.ManualSheet == "" || c.BotSheet == "") {
		return fmt.Errorf("sheet names are required for %s backend", c.Type)
	}
	if c.Target == FormsTarget && c.FormsURL == "" {
		return fmt.Errorf("forms URL is required for the forms target")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache ttl cannot be negative")
	}
	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, CSVBackend, SheetsBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	strings := make([]string, len(types))
	for i, t := range types {
		strings[i] = t.String()
	}
	return strings
}
