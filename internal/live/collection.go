// Package live keeps in-memory mirrors of remote tables: one bulk fetch for
// the initial snapshot, then incremental change events. Mutations go straight
// to the remote store and land in the mirror only when the corresponding
// change event is delivered; callers that need the new row immediately use
// the mutation's return value.
//
// A change delivered between the initial fetch completing and the
// subscription becoming active is missed; the periodic resync job reconciles
// it. The window is inherent to the fetch-then-subscribe order and is left in
// place deliberately, since subscribing first would require de-duplication by
// id and change observable ordering.
package live

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"atelier/storefront/internal/backend"
)

// Broadcaster forwards table change events to attached consumers (the admin
// live feed). Implementations must not block.
type Broadcaster interface {
	Announce(table string, ev backend.Event)
}

// decodeRow maps a raw event row onto a typed record. Payloads arrive with
// RFC 3339 timestamps and loosely typed numbers.
func decodeRow(row map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return fmt.Errorf("build row decoder: %w", err)
	}
	if err := dec.Decode(row); err != nil {
		return fmt.Errorf("decode row: %w", err)
	}
	return nil
}

func rowID(row map[string]any) string {
	if row == nil {
		return ""
	}
	if id, ok := row["id"].(string); ok {
		return id
	}
	if v, ok := row["id"]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}
