package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"astrolog/internal/config"
)

// SchemaVersion is the document schema this build writes.
//
// Version 1 documents are the bare payloads written by the first revision
// of the application. Version 2 wraps the payload in an envelope carrying
// the version number. Version 1 payloads have the same field set, so their
// upgrade is a re-wrap.
const SchemaVersion = 2

// ErrUnsupportedVersion is wrapped by a parse LoadError when a document was
// written by a newer build.
var ErrUnsupportedVersion = errors.New("unsupported schema version")

type envelope struct {
	SchemaVersion int             `json:"schema_version"`
	Data          json.RawMessage `json:"data"`
}

// upgrades[v] turns a version v payload into a version v+1 payload.
var upgrades = map[int]func(CollectionID, json.RawMessage) (json.RawMessage, error){
	1: func(_ CollectionID, data json.RawMessage) (json.RawMessage, error) { return data, nil },
}

// unwrapDocument returns the current-version payload held in a document,
// upgrading legacy documents as needed.
func unwrapDocument(id CollectionID, data []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	payload := json.RawMessage(trimmed)
	version := 1

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err == nil {
			if _, ok := probe["schema_version"]; ok {
				var env envelope
				if err := json.Unmarshal(trimmed, &env); err != nil {
					return nil, fmt.Errorf("envelope: %w", err)
				}
				if env.SchemaVersion > SchemaVersion {
					return nil, fmt.Errorf("%w: %d (newest supported is %d)", ErrUnsupportedVersion, env.SchemaVersion, SchemaVersion)
				}
				if env.SchemaVersion < 1 {
					return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.SchemaVersion)
				}
				if len(env.Data) == 0 {
					return nil, errors.New("envelope has no data")
				}
				payload, version = env.Data, env.SchemaVersion
			}
		}
	}

	for v := version; v < SchemaVersion; v++ {
		up, ok := upgrades[v]
		if !ok {
			return nil, fmt.Errorf("no upgrade from schema version %d", v)
		}
		next, err := up(id, payload)
		if err != nil {
			return nil, fmt.Errorf("upgrade from schema version %d: %w", v, err)
		}
		payload = next
	}
	return payload, nil
}

// encodeDocument wraps v in the current envelope.
func encodeDocument(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return config.MarshalDocument(envelope{SchemaVersion: SchemaVersion, Data: data})
}
