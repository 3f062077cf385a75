package descriptor

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// Canonical URI form: descry:descriptor:<type>?<key>=<value>&...
const (
	uriScheme     = "descry"
	uriPathPrefix = "descriptor"
	uriSeparator  = ":"
)

// Identity is the structured identity of a bundle descriptor. The
// "type" key is required and selects the provider variant; every other
// key is provider-specific and opaque to the resolution core.
// Equality is structural.
type Identity map[string]string

// Type returns the provider variant this identity selects.
func (id Identity) Type() string {
	return id["type"]
}

func (id Identity) clone() Identity {
	c := make(Identity, len(id))
	for k, v := range id {
		c[k] = v
	}
	return c
}

// FromURI parses a canonical descriptor URI into an Identity.
//
// Example: descry:descriptor:store?name=tk-maya&version=v1.2.3
// yields {"type": "store", "name": "tk-maya", "version": "v1.2.3"}.
func FromURI(uri string) (Identity, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid uri %q: %v: %w", uri, err, ErrMalformed)
	}

	if parsed.Scheme != uriScheme {
		return nil, fmt.Errorf("invalid uri %q: must begin with %q: %w", uri, uriScheme, ErrMalformed)
	}

	segments := strings.Split(parsed.Opaque, uriSeparator)
	if len(segments) != 2 || segments[0] != uriPathPrefix {
		return nil, fmt.Errorf("invalid uri %q: must begin with %s%s%s: %w",
			uri, uriScheme, uriSeparator, uriPathPrefix, ErrMalformed)
	}

	params, err := url.ParseQuery(parsed.RawQuery)
	if err != nil {
		return nil, fmt.Errorf("invalid uri %q: %v: %w", uri, err, ErrMalformed)
	}

	id := Identity{"type": segments[1]}
	for key, values := range params {
		if len(values) > 1 {
			return nil, fmt.Errorf("invalid uri %q: duplicate parameter %q: %w", uri, key, ErrMalformed)
		}
		id[key] = values[0]
	}
	return id, nil
}

// URI serializes the identity into its canonical string form. Keys are
// emitted in sorted order so the output is deterministic; key order is
// not significant when parsing.
func (id Identity) URI() (string, error) {
	typ, ok := id["type"]
	if !ok {
		return "", fmt.Errorf("cannot create uri from %v: missing type key: %w", id, ErrMalformed)
	}

	uri := strings.Join([]string{uriScheme, uriPathPrefix, typ}, uriSeparator)

	keys := make([]string, 0, len(id))
	for key := range id {
		if key != "type" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	chunks := make([]string, 0, len(keys))
	for _, key := range keys {
		chunks = append(chunks, key+"="+id[key])
	}

	return uri + "?" + strings.Join(chunks, "&"), nil
}

// validateKeys checks the identity against a variant's required and
// optional key sets. Missing required keys are an error; unrecognized
// extra keys only produce a warning so configuration written for newer
// releases keeps resolving.
func (id Identity) validateKeys(logger *log.Logger, required, optional []string) error {
	for _, key := range required {
		if _, ok := id[key]; !ok {
			return fmt.Errorf("descriptor %v is missing required key %q: %w", id, key, ErrMalformed)
		}
	}

	known := map[string]bool{"type": true}
	for _, key := range required {
		known[key] = true
	}
	for _, key := range optional {
		known[key] = true
	}

	var extra []string
	for key := range id {
		if !known[key] {
			extra = append(extra, key)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		logger.Warn("ignoring unsupported descriptor keys",
			"type", id.Type(), "keys", strings.Join(extra, ", "))
	}
	return nil
}
