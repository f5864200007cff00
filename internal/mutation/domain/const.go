// Package domain defines the optimistic mutation model: operations, descriptors,
// entity ids and the JSON projections applied to cached values.
package domain

// Operation is the kind of write a mutation performs.
type Operation string

const (
	// OperationCreate creates an entity.
	OperationCreate Operation = "create"

	// OperationUpdate patches an entity.
	OperationUpdate Operation = "update"

	// OperationDelete removes an entity.
	OperationDelete Operation = "delete"
)

// State is the observable lifecycle of a mutation handle: idle, then pending, then
// success or error. There is no retry transition.
type State string

const (
	StateIdle    State = "idle"
	StatePending State = "pending"
	StateSuccess State = "success"
	StateError   State = "error"
)

// DefaultIDField is the JSON field holding an entity id.
const DefaultIDField = "id"

// TempIDPrefix marks ids fabricated for optimistic creates.
const TempIDPrefix = "tmp-"
