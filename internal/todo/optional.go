package todo

import "encoding/json"

// Optional distinguishes a JSON field that was absent from one that was
// present with a zero value. encoding/json only calls UnmarshalJSON for
// fields that appear in the document, so Set records presence.
type Optional[T any] struct {
	Set   bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}
