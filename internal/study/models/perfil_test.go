package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "estudios/pkg/domain"
	dErrors "estudios/pkg/domain-errors"
)

func strPtr(s string) *string { return &s }

func TestCandidato_ApplyPerfil(t *testing.T) {
	base := func() *Candidato {
		return &Candidato{ID: id.NewCandidatoID(), Nombre: "Juan", Cedula: "1020", Email: "juan@demo.com"}
	}

	t.Run("applies only the fields present", func(t *testing.T) {
		c := base()
		nacimiento := time.Date(1990, 3, 4, 0, 0, 0, 0, time.UTC)
		estudia := true
		require.NoError(t, c.ApplyPerfil(PerfilPatch{
			Celular:            strPtr(" 300 123 "),
			TipoDocumento:      strPtr("cc"),
			FechaNacimiento:    &nacimiento,
			EstudiaActualmente: &estudia,
		}, fixedNow))

		assert.Equal(t, "Juan", c.Nombre)
		assert.Equal(t, "300 123", c.Celular)
		assert.Equal(t, DocCedula, c.TipoDocumento)
		assert.Equal(t, nacimiento, *c.FechaNacimiento)
		assert.True(t, c.EstudiaActualmente)
		assert.Equal(t, fixedNow, c.UpdatedAt)
	})

	t.Run("empty tipo_documento clears it", func(t *testing.T) {
		c := base()
		c.TipoDocumento = DocPasaporte
		require.NoError(t, c.ApplyPerfil(PerfilPatch{TipoDocumento: strPtr("")}, fixedNow))
		assert.Empty(t, c.TipoDocumento)
	})

	t.Run("rejected patch changes nothing", func(t *testing.T) {
		future := fixedNow.AddDate(0, 0, 1)
		cases := map[string]PerfilPatch{
			"blank nombre":     {Nombre: strPtr("  "), Celular: strPtr("1")},
			"unknown document": {TipoDocumento: strPtr("XX"), Celular: strPtr("1")},
			"birth in future":  {FechaNacimiento: &future, Celular: strPtr("1")},
		}
		for name, patch := range cases {
			t.Run(name, func(t *testing.T) {
				c := base()
				before := *c
				err := c.ApplyPerfil(patch, fixedNow)
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
				assert.Equal(t, before, *c)
			})
		}
	})
}
