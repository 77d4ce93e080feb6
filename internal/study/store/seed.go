package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estudios/internal/study/credentials"
	"estudios/internal/study/models"
	"estudios/internal/study/service"
	id "estudios/pkg/domain"
	"estudios/pkg/platform/sentinel"
)

// DemoSeed reports what SeedDemo created.
type DemoSeed struct {
	EmpresaID   id.EmpresaID
	AdminID     id.UserID
	ClienteID   id.UserID
	AnalistaID  id.UserID
	CandidatoID id.UserID
	SolicitudID id.SolicitudID
	EstudioID   id.EstudioID
	ItemIDs     []id.ItemID
}

type demoUser struct {
	email    string
	nombre   string
	password string
	role     id.Role
	empresa  bool
}

var demoUsers = []demoUser{
	{email: "admin@demo.com", nombre: "Admin Demo", password: "admin123", role: id.RoleAdmin},
	{email: "cliente@acme.com", nombre: "Cliente Demo", password: "cliente123", role: id.RoleCliente, empresa: true},
	{email: "analista@demo.com", nombre: "Analista Demo", password: "analista123", role: id.RoleAnalista},
	{email: "juan@demo.com", nombre: "Juan Pérez", password: "candidato123", role: id.RoleCandidato},
}

// SeedDemo creates a company, the four demo accounts, a candidate and one
// solicitud with its study, consents and one item per tipo. It returns
// (nil, nil) when the demo admin already exists.
func SeedDemo(ctx context.Context, stores service.Stores, now time.Time) (*DemoSeed, error) {
	if _, err := stores.Directory.FindUserByEmail(ctx, demoUsers[0].email); err == nil {
		return nil, nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, fmt.Errorf("check demo seed: %w", err)
	}

	seed := &DemoSeed{}
	empresa := &models.Empresa{
		ID:            id.NewEmpresaID(),
		Nombre:        "Acme S.A.",
		NIT:           "900000000-1",
		EmailContacto: "cliente@acme.com",
		CreatedAt:     now,
	}
	if err := stores.Directory.CreateEmpresa(ctx, empresa); err != nil {
		return nil, fmt.Errorf("seed empresa: %w", err)
	}
	seed.EmpresaID = empresa.ID

	for i, du := range demoUsers {
		hash, err := credentials.Hash(du.password)
		if err != nil {
			return nil, fmt.Errorf("seed user %s: %w", du.email, err)
		}
		u := &models.User{
			ID:           id.NewUserID(),
			Email:        du.email,
			Nombre:       du.nombre,
			PasswordHash: hash,
			Role:         du.role,
			Active:       true,
			CreatedAt:    now.Add(time.Duration(i) * time.Millisecond),
		}
		if du.empresa {
			empresaID := empresa.ID
			u.EmpresaID = &empresaID
		}
		if err := stores.Directory.CreateUser(ctx, u); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", du.email, err)
		}
		switch du.role {
		case id.RoleAdmin:
			seed.AdminID = u.ID
		case id.RoleCliente:
			seed.ClienteID = u.ID
		case id.RoleAnalista:
			seed.AnalistaID = u.ID
		case id.RoleCandidato:
			seed.CandidatoID = u.ID
		}
	}

	cand := &models.Candidato{
		ID:               id.NewCandidatoID(),
		Nombre:           "Juan",
		Apellido:         "Pérez",
		Cedula:           "1234567890",
		Email:            "juan@demo.com",
		Celular:          "3000000000",
		CiudadResidencia: "Bogotá",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := stores.Directory.CreateCandidato(ctx, cand); err != nil {
		return nil, fmt.Errorf("seed candidato: %w", err)
	}

	analistaID := seed.AnalistaID
	sol := &models.Solicitud{
		ID:          id.NewSolicitudID(),
		EmpresaID:   empresa.ID,
		CandidatoID: cand.ID,
		AnalistaID:  &analistaID,
		Estado:      models.SolicitudPendienteInvitacion,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := stores.Solicitudes.CreateSolicitud(ctx, sol); err != nil {
		return nil, fmt.Errorf("seed solicitud: %w", err)
	}
	seed.SolicitudID = sol.ID

	e := models.NewEstudio(id.NewEstudioID(), sol.ID, now)
	if err := stores.Estudios.CreateEstudio(ctx, e); err != nil {
		return nil, fmt.Errorf("seed estudio: %w", err)
	}
	seed.EstudioID = e.ID

	for _, tipo := range models.ConsentCatalog() {
		if err := stores.Consents.CreateConsent(ctx, models.NewConsent(id.NewConsentID(), e.ID, tipo, now)); err != nil {
			return nil, fmt.Errorf("seed consent %s: %w", tipo, err)
		}
	}
	for i, tipo := range models.ItemTipos() {
		it, err := models.NewItem(id.NewItemID(), e.ID, tipo, now.Add(time.Duration(i)*time.Millisecond))
		if err != nil {
			return nil, err
		}
		if err := stores.Items.CreateItem(ctx, it); err != nil {
			return nil, fmt.Errorf("seed item %s: %w", tipo, err)
		}
		seed.ItemIDs = append(seed.ItemIDs, it.ID)
	}
	return seed, nil
}
