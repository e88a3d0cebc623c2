package ports

// Server is a long running surface with a start/stop lifecycle
type Server interface {
	Start() error
	Stop() error
}
