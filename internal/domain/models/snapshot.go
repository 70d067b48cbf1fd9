package models

// WrappedSnapshot is the cache-file shape for the registrants and
// submissions datasets: the record list plus the timestamp of the
// refresh that produced it.
type WrappedSnapshot struct {
	GlobalTimestamp string   `json:"global_timestamp"`
	Data            []Record `json:"data"`
}

// BareSnapshot is the cache-file shape for the derived datasets
// (registrations, enrollments, certificates): a plain record list with
// no envelope.
type BareSnapshot []Record

// RefreshCounts summarizes the derived datasets written by a refresh.
type RefreshCounts struct {
	Registrations int `json:"registrations"`
	Enrollments   int `json:"enrollments"`
	Certificates  int `json:"certificates"`
}
