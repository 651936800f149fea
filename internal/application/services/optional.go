package services

import "encoding/json"

// Optional is a request field that distinguishes an absent key from an
// explicit JSON null. Absent leaves Set false (unchanged on partial update);
// null sets Set with a nil Value, which applies as a clear.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}
