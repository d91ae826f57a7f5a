package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var resourcePattern = regexp.MustCompile(`^https?://`)

var (
	topLevelKeys = map[string]bool{"settings": true, "pings": true}
	settingsKeys = map[string]bool{
		"check_interval": true, "warning_threshold": true, "timeout": true,
		"max_retries": true, "worker_pool_size": true, "history_file": true,
	}
	serviceKeys = map[string]bool{
		"name": true, "protocol": true, "method": true, "resource": true,
		"expected": true, "tags": true, "headers": true, "payload": true,
		"interval": true, "timeout": true, "warning_threshold": true,
	}
	expectedKeys  = map[string]bool{"status": true, "text": true, "headers": true}
	headerKVKeys  = map[string]bool{"name": true, "value": true}
)

// checkShape walks the generic YAML structure and rejects unrecognised keys
// at every nested level, plus non-mapping roots.
func checkShape(doc interface{}) []string {
	var errs []string

	top, ok := asStringMap(doc)
	if !ok {
		return []string{"document root must be a mapping with 'settings' and 'pings' keys"}
	}
	errs = append(errs, rejectUnknown("", top, topLevelKeys)...)

	if settingsRaw, present := top["settings"]; present && settingsRaw != nil {
		if settingsMap, ok := asStringMap(settingsRaw); ok {
			errs = append(errs, rejectUnknown("settings.", settingsMap, settingsKeys)...)
		} else {
			errs = append(errs, "settings must be a mapping")
		}
	}

	pingsRaw, present := top["pings"]
	if !present || pingsRaw == nil {
		errs = append(errs, "pings is required")
		return errs
	}
	pingsList, ok := pingsRaw.([]interface{})
	if !ok {
		errs = append(errs, "pings must be a list")
		return errs
	}
	if len(pingsList) == 0 {
		errs = append(errs, "pings must contain at least one service")
	}

	for i, item := range pingsList {
		svcMap, ok := asStringMap(item)
		if !ok {
			errs = append(errs, fmt.Sprintf("pings[%d] must be a mapping", i))
			continue
		}
		prefix := fmt.Sprintf("pings[%d].", i)
		errs = append(errs, rejectUnknown(prefix, svcMap, serviceKeys)...)

		if expectedRaw, present := svcMap["expected"]; present && expectedRaw != nil {
			if expectedMap, ok := asStringMap(expectedRaw); ok {
				errs = append(errs, rejectUnknown(prefix+"expected.", expectedMap, expectedKeys)...)
			} else {
				errs = append(errs, prefix+"expected must be a mapping")
			}
		}

		if headersRaw, present := svcMap["headers"]; present && headersRaw != nil {
			if headerList, ok := headersRaw.([]interface{}); ok {
				for j, h := range headerList {
					if hm, ok := asStringMap(h); ok {
						errs = append(errs, rejectUnknown(fmt.Sprintf("%sheaders[%d].", prefix, j), hm, headerKVKeys)...)
					}
				}
			}
		}
	}

	return errs
}

func asStringMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func rejectUnknown(prefix string, m map[string]interface{}, allowed map[string]bool) []string {
	var errs []string
	for k := range m {
		if !allowed[k] {
			errs = append(errs, fmt.Sprintf("unrecognised key %q", prefix+k))
		}
	}
	return errs
}

var validate = validator.New()

// Validate runs shape-independent field and cross-field rules against a
// decoded Configuration. It returns every violation found; an empty slice
// means the configuration is valid.
func Validate(cfg *Configuration) []string {
	var errs []string

	if err := validate.Struct(cfg); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				errs = append(errs, describeFieldError(fe))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if cfg.Settings.WarningThresholdSeconds >= cfg.Settings.TimeoutSeconds {
		errs = append(errs, "settings.warning_threshold must be less than settings.timeout")
	}

	for i, svc := range cfg.Pings {
		if !resourcePattern.MatchString(svc.Resource) {
			errs = append(errs, fmt.Sprintf("pings[%d].resource must be an absolute http(s) URL", i))
		} else if _, err := url.Parse(svc.Resource); err != nil {
			errs = append(errs, fmt.Sprintf("pings[%d].resource is not a valid URL: %v", i, err))
		}

		if !isASCII(svc.Name) {
			errs = append(errs, fmt.Sprintf("pings[%d].name must be ASCII", i))
		}

		if svc.Payload != nil && svc.Method != "POST" {
			errs = append(errs, fmt.Sprintf("pings[%d]: payload is only valid for POST", i))
		}

		warn := cfg.Settings.WarningThresholdSeconds
		if svc.WarningThreshold != nil {
			warn = *svc.WarningThreshold
		}
		timeout := cfg.Settings.TimeoutSeconds
		if svc.TimeoutSeconds != nil {
			timeout = *svc.TimeoutSeconds
		}
		if svc.WarningThreshold != nil || svc.TimeoutSeconds != nil {
			if warn >= timeout {
				errs = append(errs, fmt.Sprintf("pings[%d]: warning_threshold must be less than timeout", i))
			}
		}

		for _, h := range svc.Headers {
			if strings.TrimSpace(h.Name) == "" {
				errs = append(errs, fmt.Sprintf("pings[%d].headers: header name must not be empty", i))
			}
		}
	}

	errs = append(errs, duplicateNameErrors(cfg.Pings)...)

	return errs
}

func duplicateNameErrors(defs []ServiceDefinition) []string {
	seen := make(map[string]bool, len(defs))
	var errs []string
	for _, d := range defs {
		if seen[d.Name] {
			errs = append(errs, fmt.Sprintf("Duplicate service name: %q", d.Name))
			continue
		}
		seen[d.Name] = true
	}
	return errs
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return len(s) > 0
}

func describeFieldError(fe validator.FieldError) string {
	return fmt.Sprintf("%s failed validation %q", fe.Namespace(), fe.Tag())
}
