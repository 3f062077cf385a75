package descriptor

import "errors"

// ErrMalformed marks descriptor identities and URIs that do not follow
// the canonical grammar: wrong scheme or path prefix, duplicate query
// keys, or a missing/unknown type key.
var ErrMalformed = errors.New("malformed descriptor")

// ErrMetadataMissing marks a bundle whose metadata file is still
// absent after a successful materialization. This is a hard error,
// never a "not yet ready" state.
var ErrMetadataMissing = errors.New("bundle metadata file missing")
