package s3

import "time"

// ObjectRecord describes one object as reported by the backend.
// LastModified is normalized to the listing time zone.
type ObjectRecord struct {
	Key          string    `json:"key" yaml:"key"`
	Size         int64     `json:"size" yaml:"size"`
	LastModified time.Time `json:"last_modified" yaml:"last_modified"`
	StorageClass string    `json:"storage_class" yaml:"storage_class"`
}

// Listing holds the records of a single enumeration call, in backend
// order.
type Listing struct {
	Records []ObjectRecord `json:"records" yaml:"records"`
}
