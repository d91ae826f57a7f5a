package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/opswatch/sentinel/internal/apperrors"
)

const validDoc = `
settings:
  check_interval: 30
  warning_threshold: 1
  timeout: 5
pings:
  - name: homepage
    protocol: HTTPS
    method: GET
    resource: https://example.com
    expected:
      status: 200
`

func TestParse_ValidDocumentAppliesDefaultsForOmittedSettings(t *testing.T) {
	cfg, err := Parse("doc.yaml", []byte(validDoc))
	require.NoError(t, err)
	require.Len(t, cfg.Pings, 1)
	assert.Equal(t, 3, cfg.Settings.MaxRetries) // default, not set in document
	assert.Equal(t, "history.csv", cfg.Settings.HistoryFile)
	assert.Equal(t, 30, cfg.Settings.CheckIntervalSeconds)
}

func TestParse_EmptyDocumentIsConfigurationError(t *testing.T) {
	_, err := Parse("doc.yaml", []byte("  \n"))
	require.Error(t, err)
	var cfgErr *apperrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Fields, "document is empty")
}

func TestParse_UnrecognisedTopLevelKeyIsRejected(t *testing.T) {
	doc := validDoc + "\nextra_knob: true\n"
	_, err := Parse("doc.yaml", []byte(doc))
	require.Error(t, err)
	var cfgErr *apperrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Fields, `unrecognised key "extra_knob"`)
}

func TestParse_ZeroServicesIsRejected(t *testing.T) {
	doc := `
pings: []
`
	_, err := Parse("doc.yaml", []byte(doc))
	require.Error(t, err)
	var cfgErr *apperrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Fields, "pings must contain at least one service")
}

func TestParse_DuplicateServiceNamesAreRejected(t *testing.T) {
	doc := `
pings:
  - name: homepage
    protocol: HTTPS
    method: GET
    resource: https://example.com
    expected:
      status: 200
  - name: homepage
    protocol: HTTPS
    method: GET
    resource: https://example.com/other
    expected:
      status: 200
`
	_, err := Parse("doc.yaml", []byte(doc))
	require.Error(t, err)
	var cfgErr *apperrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Fields, `Duplicate service name: "homepage"`)
}

func TestParse_WarningThresholdMustBeLessThanTimeout(t *testing.T) {
	doc := `
settings:
  check_interval: 30
  warning_threshold: 10
  timeout: 5
pings:
  - name: homepage
    protocol: HTTPS
    method: GET
    resource: https://example.com
    expected:
      status: 200
`
	_, err := Parse("doc.yaml", []byte(doc))
	require.Error(t, err)
	var cfgErr *apperrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Fields, "settings.warning_threshold must be less than settings.timeout")
}

func TestParse_PayloadOnlyValidForPost(t *testing.T) {
	doc := `
pings:
  - name: homepage
    protocol: HTTPS
    method: GET
    resource: https://example.com
    payload:
      key: value
    expected:
      status: 200
`
	_, err := Parse("doc.yaml", []byte(doc))
	require.Error(t, err)
	var cfgErr *apperrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Fields, "pings[0]: payload is only valid for POST")
}

func TestParse_NonAbsoluteResourceIsRejected(t *testing.T) {
	doc := `
pings:
  - name: homepage
    protocol: HTTPS
    method: GET
    resource: example.com/path
    expected:
      status: 200
`
	_, err := Parse("doc.yaml", []byte(doc))
	require.Error(t, err)
}

func TestParse_RoundTripPreservesSemantics(t *testing.T) {
	cfg, err := Parse("doc.yaml", []byte(validDoc))
	require.NoError(t, err)

	reserialized, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	again, err := Parse("doc.yaml", reserialized)
	require.NoError(t, err)

	assert.Equal(t, cfg.Settings, again.Settings)
	require.Len(t, again.Pings, len(cfg.Pings))
	assert.Equal(t, cfg.Pings[0].Name, again.Pings[0].Name)
	assert.Equal(t, cfg.Pings[0].Resource, again.Pings[0].Resource)
	assert.Equal(t, cfg.Pings[0].Expected, again.Pings[0].Expected)
}

func TestMerge_OverridesOnlySetFields(t *testing.T) {
	settings := DefaultGlobalSettings()
	interval := 15
	def := ServiceDefinition{
		Name:            "svc",
		Method:          "GET",
		Resource:        "https://example.com",
		Expected:        ExpectedValidation{Status: 200},
		IntervalSeconds: &interval,
	}

	eff := Merge(settings, def)
	assert.Equal(t, secondsToDuration(15), eff.Interval)
	assert.Equal(t, secondsToDuration(settings.TimeoutSeconds), eff.Timeout)
	assert.Equal(t, secondsToDuration(settings.WarningThresholdSeconds), eff.WarningThreshold)
}
