package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/allisson/inspecta/internal/errors"
)

// ErrUnexpectedShape is returned when a server response cannot be reconciled with
// the cached value: not an object, or missing an id.
var ErrUnexpectedShape = apperrors.Wrap(apperrors.ErrConflict, "unexpected response shape")

// Provisional builds the optimistic entity for a create: the payload plus the temporary
// id and created_at/updated_at timestamps when the payload does not carry them.
func Provisional(payload json.RawMessage, idField, tempID string, now time.Time) (json.RawMessage, error) {
	obj, err := decodeObject(payload)
	if err != nil {
		return nil, err
	}
	obj[idField] = tempID
	ts := now.UTC().Format(time.RFC3339Nano)
	if _, ok := obj["created_at"]; !ok {
		obj["created_at"] = ts
	}
	if _, ok := obj["updated_at"]; !ok {
		obj["updated_at"] = ts
	}
	return json.Marshal(obj)
}

// Project applies the optimistic form of a mutation to a cached value.
//
// Lists get the provisional entity appended, the matching item merged with the patch,
// or the matching item removed. A single entity is merged, or becomes null on delete.
// Values of any other shape, and entities that do not match, are returned unchanged.
func Project(value json.RawMessage, op Operation, idField, id string, body json.RawMessage) (json.RawMessage, error) {
	switch op {
	case OperationCreate:
		return appendToList(value, body, idField)
	case OperationUpdate:
		patch, err := decodeObject(body)
		if err != nil {
			return nil, err
		}
		return transform(value, idField, id, func(obj map[string]any) (map[string]any, bool) {
			for k, v := range patch {
				if k == idField {
					continue
				}
				obj[k] = v
			}
			return obj, true
		})
	case OperationDelete:
		return transform(value, idField, id, func(map[string]any) (map[string]any, bool) {
			return nil, false
		})
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
}

// Reconcile folds a confirmed server outcome into an authoritative value. A created
// entity is appended (or replaces an entry with the same server id), an updated entity
// replaces the entry with its id, a delete removes it.
func Reconcile(value json.RawMessage, op Operation, idField, id string, server json.RawMessage) (json.RawMessage, error) {
	switch op {
	case OperationCreate:
		return appendToList(value, server, idField)
	case OperationUpdate:
		obj, err := decodeObject(server)
		if err != nil {
			return nil, err
		}
		serverID := idOf(obj, idField)
		if serverID == "" {
			return nil, ErrUnexpectedShape
		}
		return transform(value, idField, serverID, func(map[string]any) (map[string]any, bool) {
			return cloneObject(obj), true
		})
	case OperationDelete:
		return Project(value, op, idField, id, nil)
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
}

// EntityID extracts the id of a server response, failing when the response is not an
// object or carries no id.
func EntityID(server json.RawMessage, idField string) (string, error) {
	obj, err := decodeObject(server)
	if err != nil {
		return "", err
	}
	id := idOf(obj, idField)
	if id == "" {
		return "", ErrUnexpectedShape
	}
	return id, nil
}

func appendToList(value, entity json.RawMessage, idField string) (json.RawMessage, error) {
	doc, err := decode(value)
	if err != nil {
		return nil, err
	}
	list, ok := doc.([]any)
	if !ok {
		return value, nil
	}
	obj, err := decodeObject(entity)
	if err != nil {
		return nil, err
	}
	id := idOf(obj, idField)
	for i, item := range list {
		if m, ok := item.(map[string]any); ok && id != "" && idOf(m, idField) == id {
			list[i] = obj
			return json.Marshal(list)
		}
	}
	return json.Marshal(append(list, obj))
}

// transform rewrites the entity with the given id. fn returns the replacement and
// false to remove the entity.
func transform(
	value json.RawMessage,
	idField, id string,
	fn func(map[string]any) (map[string]any, bool),
) (json.RawMessage, error) {
	doc, err := decode(value)
	if err != nil {
		return nil, err
	}
	switch v := doc.(type) {
	case []any:
		out := make([]any, 0, len(v))
		changed := false
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok || idOf(m, idField) != id {
				out = append(out, item)
				continue
			}
			changed = true
			if next, keep := fn(m); keep {
				out = append(out, next)
			}
		}
		if !changed {
			return value, nil
		}
		return json.Marshal(out)
	case map[string]any:
		if idOf(v, idField) != id {
			return value, nil
		}
		next, keep := fn(v)
		if !keep {
			return json.RawMessage("null"), nil
		}
		return json.Marshal(next)
	default:
		return value, nil
	}
}

func decode(data json.RawMessage) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	return v, nil
}

func decodeObject(data json.RawMessage) (map[string]any, error) {
	v, err := decode(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrUnexpectedShape
	}
	return obj, nil
}

func idOf(obj map[string]any, idField string) string {
	switch v := obj[idField].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func cloneObject(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	return out
}
