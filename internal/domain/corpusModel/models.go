package corpusModel

// Page is the extracted view of one crawled URL. Pages are transient: they
// exist only inside an ingestion run and are discarded after chunking.
type Page struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Chunk is one contiguous slice of a page's content. (URL, ChunkIndex) is the
// natural key; concatenating a page's chunks in ChunkIndex order reproduces
// the page content modulo per-chunk whitespace trimming.
type Chunk struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	ChunkIndex int    `json:"chunk_index"`
	Content    string `json:"content"`
}

// RecordMetadata is the payload stored next to each vector so retrieval can
// display context without a second content lookup.
type RecordMetadata struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	ChunkIndex int    `json:"chunk_index"`
	Source     string `json:"source"`
	Snippet    string `json:"text"`
}

// VectorRecord is the unit of ownership transferred to the vector index on
// upsert. ID is content-addressed from (URL, ChunkIndex) so re-ingestion
// updates in place instead of duplicating.
type VectorRecord struct {
	ID        string
	Embedding []float32
	Metadata  RecordMetadata
}

// Match is one ranked hit from an index query, highest score first.
type Match struct {
	ID       string
	Score    float32
	Metadata RecordMetadata
}
