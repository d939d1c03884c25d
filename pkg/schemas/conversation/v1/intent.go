package conversation

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// Intent is the flat transport form of a conversation launch. Data and Type
// make up the primary data slot and are carried outside of Extras.
type Intent struct {
	Target string
	Action string
	Data   *url.URL
	Type   string
	Extras map[string]json.RawMessage
}

type intentWire struct {
	Target string                     `json:"target"`
	Action string                     `json:"action,omitempty"`
	Data   string                     `json:"data,omitempty"`
	Type   string                     `json:"type,omitempty"`
	Extras map[string]json.RawMessage `json:"extras,omitempty"`
}

// ParseIntent reads the JSON form produced by Intent.MarshalJSON.
func ParseIntent(data []byte) (Intent, error) {
	var in Intent
	err := json.Unmarshal(data, &in)
	return in, err
}

func (in Intent) MarshalJSON() ([]byte, error) {
	w := intentWire{
		Target: in.Target,
		Action: in.Action,
		Type:   in.Type,
		Extras: in.Extras,
	}
	if in.Data != nil {
		w.Data = in.Data.String()
	}
	return json.Marshal(w)
}

func (in *Intent) UnmarshalJSON(data []byte) error {
	var w intentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*in = Intent{
		Target: w.Target,
		Action: w.Action,
		Type:   w.Type,
		Extras: w.Extras,
	}
	if w.Data != "" {
		u, err := url.Parse(w.Data)
		if err != nil {
			return fmt.Errorf("intent data: %w", err)
		}
		in.Data = u
	}
	return nil
}

// HasExtra reports whether key is present, regardless of its value.
func (in Intent) HasExtra(key string) bool {
	_, ok := in.Extras[key]
	return ok
}

func (in *Intent) putExtra(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("extra %s: %w", key, err)
	}
	if in.Extras == nil {
		in.Extras = make(map[string]json.RawMessage)
	}
	in.Extras[key] = b
	return nil
}

// getExtra decodes key into out and reports whether the key was present.
func (in Intent) getExtra(key string, out any) (bool, error) {
	b, ok := in.Extras[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}
