// Package store holds the persistence adapters of the study module: an
// in-memory implementation for development and tests, and PostgreSQL.
package store

import "estudios/internal/study/service"

var (
	_ service.DirectoryStore = (*InMemory)(nil)
	_ service.SolicitudStore = (*InMemory)(nil)
	_ service.EstudioStore   = (*InMemory)(nil)
	_ service.ItemStore      = (*InMemory)(nil)
	_ service.ConsentStore   = (*InMemory)(nil)
	_ service.AnexoStore     = (*InMemory)(nil)

	_ service.DirectoryStore = (*PostgresStore)(nil)
	_ service.SolicitudStore = (*PostgresStore)(nil)
	_ service.EstudioStore   = (*PostgresStore)(nil)
	_ service.ItemStore      = (*PostgresStore)(nil)
	_ service.ConsentStore   = (*PostgresStore)(nil)
	_ service.AnexoStore     = (*PostgresStore)(nil)
)

// Stores exposes one adapter behind every service port.
func (s *InMemory) Stores() service.Stores {
	return service.Stores{Directory: s, Solicitudes: s, Estudios: s, Items: s, Consents: s, Anexos: s}
}

// Stores exposes one adapter behind every service port.
func (s *PostgresStore) Stores() service.Stores {
	return service.Stores{Directory: s, Solicitudes: s, Estudios: s, Items: s, Consents: s, Anexos: s}
}
