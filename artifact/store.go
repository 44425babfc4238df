package artifact

// Store is the durability boundary the lifecycle manager writes through.
// Implementations must make Put atomic per (project, type) key: a concurrent
// Get never observes a torn write.
//
// The lifecycle Manager is the only component that may call Put; everything
// else reads.
type Store interface {
	// Put durably stores the envelope for (project, type).
	Put(project, artifactType string, env Envelope) error

	// Get loads the current envelope for (project, type).
	// The second return is false when no artifact of that type exists.
	Get(project, artifactType string) (Envelope, bool, error)

	// ListTypes returns the artifact types present for a project.
	ListTypes(project string) ([]string, error)

	// ListProjects returns all project IDs with at least one artifact.
	ListProjects() ([]string, error)
}
