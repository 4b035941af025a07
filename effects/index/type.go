package index

import (
	"github.com/on-the-ground/contextmap/contextmap"
	"github.com/on-the-ground/contextmap/effects"
)

// Payload is a sealed interface for index operations.
// Every payload but Source is routed by its namespace, so all operations on
// one namespace run on the same worker, one at a time.
type Payload interface {
	PartitionKey() string
	payload()
}

var (
	_ Payload = Source{}
	_ Payload = Insert[string, int, int]{}
	_ Payload = Query[string, int]{}
	_ Payload = LiveValue[string]{}
	_ Payload = LiveLink[int]{}
	_ Payload = History[string]{}
	_ Payload = Snapshot[int]{}
)

// Source asks for the change feed of the handler.
type Source struct{}

func (Source) PartitionKey() string { return "" }
func (Source) payload()             {}

// Insert associates Link with Value from Context on, in Namespace.
type Insert[L, C, V any] struct {
	Namespace string
	Context   C
	Link      L
	Value     V
}

func (p Insert[L, C, V]) PartitionKey() string { return p.Namespace }
func (p Insert[L, C, V]) payload()             {}

// Query reads the record of Link in effect at Context.
type Query[L, C any] struct {
	Namespace string
	Context   C
	Link      L
}

func (p Query[L, C]) PartitionKey() string { return p.Namespace }
func (p Query[L, C]) payload()             {}

// LiveValue reads the value Link currently holds.
type LiveValue[L any] struct {
	Namespace string
	Link      L
}

func (p LiveValue[L]) PartitionKey() string { return p.Namespace }
func (p LiveValue[L]) payload()             {}

// LiveLink reads the link currently holding Value.
type LiveLink[V any] struct {
	Namespace string
	Value     V
}

func (p LiveLink[V]) PartitionKey() string { return p.Namespace }
func (p LiveLink[V]) payload()             {}

// History reads every record of Link.
type History[L any] struct {
	Namespace string
	Link      L
}

func (p History[L]) PartitionKey() string { return p.Namespace }
func (p History[L]) payload()             {}

// Snapshot reads the whole association as of Context.
type Snapshot[C any] struct {
	Namespace string
	Context   C
}

func (p Snapshot[C]) PartitionKey() string { return p.Namespace }
func (p Snapshot[C]) payload()             {}

// Lookup is the result of a read that may find nothing.
type Lookup[T any] struct {
	Value T
	Found bool
}

// Change is published on the change feed for every insertion that changed
// a map.
type Change[L, C, V any] struct {
	Namespace string
	Outcome   contextmap.Outcome
	Context   C
	Link      L
	Value     V
	effects.TimeSpan
}
