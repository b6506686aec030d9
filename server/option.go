package server

type Option func(s *Server)

// WithPort sets the port the server listens on. It takes precedence over
// the TERRA_PORT environment variable.
func WithPort(port string) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithSwaggerFile points the docs endpoint at a different OpenAPI document.
func WithSwaggerFile(path string) Option {
	return func(s *Server) {
		s.swaggerFile = path
	}
}
