package constant

// StructureBuildTopic is the in-process queue topic for structuring jobs.
const StructureBuildTopic = "STRUCTURE_BUILD"

// Event types published to the NATS bus.
const (
	EventDocumentStructured      = "DOCUMENT_STRUCTURED"
	EventDocumentStructureFailed = "DOCUMENT_STRUCTURE_FAILED"
)
