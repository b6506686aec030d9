package types

import "github.com/google/uuid"

// Spec identifiers are distinct string types so a surface id can never be
// passed where a medium id is expected. The empty id is the invalid id.

type SurfaceSpecID string

func (id SurfaceSpecID) String() string { return string(id) }
func (id SurfaceSpecID) IsValid() bool  { return id != "" }

type MediumSpecID string

func (id MediumSpecID) String() string { return string(id) }
func (id MediumSpecID) IsValid() bool  { return id != "" }

type BiomeSpecID string

func (id BiomeSpecID) String() string { return string(id) }
func (id BiomeSpecID) IsValid() bool  { return id != "" }

type DamageSpecID string

func (id DamageSpecID) String() string { return string(id) }
func (id DamageSpecID) IsValid() bool  { return id != "" }

type AssemblySpecID string

func (id AssemblySpecID) String() string { return string(id) }
func (id AssemblySpecID) IsValid() bool  { return id != "" }

// NewActorGUID mints a globally unique id for a runtime-spawned actor or
// assembly. GUIDs are plain strings in delta records so saves stay portable
// across store backends.
func NewActorGUID() string {
	return uuid.NewString()
}

// SubmissionHash identifies one accepted delta batch. The pool mints a hash
// when a batch is enqueued, and clients use it to look up the receipt once
// the batch has been applied.
type SubmissionHash string

func (h SubmissionHash) String() string { return string(h) }

// NewSubmissionHash mints a hash for a freshly accepted batch.
func NewSubmissionHash() SubmissionHash {
	return SubmissionHash(uuid.NewString())
}
