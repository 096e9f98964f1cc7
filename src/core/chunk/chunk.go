package chunk

// Extraction is one unit of source text tied to its provenance, produced by a
// reader (e.g. a single PDF page).
type Extraction struct {
	Text     string
	Location string
}

// Chunk is a bounded-length slice of an Extraction's text. It inherits the
// extraction's location and is immutable after creation.
type Chunk struct {
	Text     string
	Location string
}

// Chunker splits extracted text into chunks suitable for embedding.
// Implementations must be deterministic for a fixed input and configuration.
type Chunker interface {
	GetChunks(extractions []Extraction) ([]Chunk, error)
}
