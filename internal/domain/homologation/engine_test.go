package homologation_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cobranza-etl/internal/domain"
	"github.com/jhoicas/cobranza-etl/internal/domain/entity"
	"github.com/jhoicas/cobranza-etl/internal/domain/homologation"
	"github.com/jhoicas/cobranza-etl/internal/domain/tenant"
)

var fechaProceso = time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

// Dos tenants con vocabularios distintos que deben converger al mismo
// modelo canónico.
func configAlpha() *tenant.Config {
	return &tenant.Config{
		TenantID: "alpha",
		Schema:   "alpha",
		Mapeos: map[string]string{
			tenant.CampoDocumento:       "dni",
			tenant.CampoNombre:          "nombre_cliente",
			tenant.CampoSaldo:           "deuda",
			tenant.CampoDiasMora:        "dias_atraso",
			tenant.CampoFecha:           "fecha_gestion",
			tenant.CampoCanal:           "medio",
			tenant.CampoEjecutivo:       "agente",
			tenant.CampoTipificacion:    "resultado",
			tenant.CampoEsContacto:      "contacto",
			tenant.CampoEsCompromiso:    "compromiso",
			tenant.CampoMontoCompromiso: "monto_pdp",
		},
		Taxonomia: map[string]string{
			"CONT_COMP": "COMPROMISO_PAGO",
			"CONT_NEG":  "NO_INTERESADO",
			"NC":        "NO_CONTACTO",
			"SPAM":      tenant.Ignorar,
		},
	}
}

func configBeta() *tenant.Config {
	return &tenant.Config{
		TenantID: "beta",
		Schema:   "beta",
		Mapeos: map[string]string{
			tenant.CampoDocumento:    "documento_id",
			tenant.CampoNombre:       "razon_social",
			tenant.CampoSaldo:        "saldo_pendiente",
			tenant.CampoDiasMora:     "mora",
			tenant.CampoFecha:        "fec_contacto",
			tenant.CampoCanal:        "canal_contacto",
			tenant.CampoEjecutivo:    "gestor",
			tenant.CampoTipificacion: "codigo_resultado",
			tenant.CampoEsContacto:   "flag_contacto",
			tenant.CampoEsCompromiso: "flag_promesa",
		},
		Taxonomia: map[string]string{
			"PROMESA_PAGO": "COMPROMISO_PAGO",
		},
	}
}

func gestionAlphaCruda() homologation.RawRecord {
	return homologation.RawRecord{
		"dni":           "12345678",
		"fecha_gestion": "2026-08-29 10:30:00",
		"medio":         "CALL",
		"agente":        "jperez",
		"resultado":     "CONT_COMP",
		"contacto":      "si",
		"compromiso":    "1",
		"monto_pdp":     "350.50",
	}
}

func TestEngine_HomologacionCruzadaDeTenants(t *testing.T) {
	// El mismo hecho de negocio llega con vocabularios distintos por
	// tenant y debe producir la misma tipificación canónica.
	alpha, err := homologation.New(configAlpha()).Gestion(gestionAlphaCruda(), fechaProceso, 1)
	require.NoError(t, err)

	beta, err := homologation.New(configBeta()).Gestion(homologation.RawRecord{
		"documento_id":     "87654321",
		"fec_contacto":     "2026-08-29",
		"canal_contacto":   "WHATSAPP",
		"gestor":           "mgarcia",
		"codigo_resultado": "PROMESA_PAGO",
		"flag_contacto":    true,
		"flag_promesa":     true,
	}, fechaProceso, 1)
	require.NoError(t, err)

	assert.Equal(t, entity.TipCompromisoPago, alpha.TipificacionHomologada)
	assert.Equal(t, entity.TipCompromisoPago, beta.TipificacionHomologada)

	assert.Equal(t, "alpha_2026-08-29_000001", alpha.ID)
	assert.Equal(t, "beta_2026-08-29_000001", beta.ID, "el ID lleva el tenant, no hay colisión entre tenants")
}

func TestEngine_Gestion(t *testing.T) {
	eng := homologation.New(configAlpha())

	t.Run("homologa los campos mapeados", func(t *testing.T) {
		a, err := eng.Gestion(gestionAlphaCruda(), fechaProceso, 3)
		require.NoError(t, err)

		assert.Equal(t, "12345678", a.Documento)
		assert.Equal(t, entity.CanalCall, a.Canal)
		assert.Equal(t, "jperez", a.Ejecutivo)
		assert.Equal(t, "CONT_COMP", a.TipificacionOriginal, "el código crudo se conserva para auditoría")
		assert.True(t, a.EsContacto)
		assert.True(t, a.EsCompromiso)
		require.NotNil(t, a.MontoCompromiso)
		assert.True(t, a.MontoCompromiso.Equal(decimal.NewFromFloat(350.50)))
		assert.Equal(t, 1, a.Intentos, "intentos ausentes valen 1")
	})

	t.Run("código sin homologar omite el registro", func(t *testing.T) {
		raw := gestionAlphaCruda()
		raw["resultado"] = "CODIGO_NUEVO"

		_, err := eng.Gestion(raw, fechaProceso, 1)
		var unhom *domain.UnhomologatedOutcomeError
		require.ErrorAs(t, err, &unhom)
		assert.Equal(t, "alpha", unhom.TenantID)
		assert.Equal(t, "CODIGO_NUEVO", unhom.Codigo)
		assert.True(t, domain.EsErrorDeRegistro(err), "no debe escalar a falla de corrida")
	})

	t.Run("código IGNORAR omite con motivo", func(t *testing.T) {
		raw := gestionAlphaCruda()
		raw["resultado"] = "SPAM"

		_, err := eng.Gestion(raw, fechaProceso, 1)
		assert.True(t, domain.EsErrorDeRegistro(err))
	})

	t.Run("la búsqueda en taxonomía no distingue mayúsculas", func(t *testing.T) {
		raw := gestionAlphaCruda()
		raw["resultado"] = "  cont_comp "

		a, err := eng.Gestion(raw, fechaProceso, 1)
		require.NoError(t, err)
		assert.Equal(t, entity.TipCompromisoPago, a.TipificacionHomologada)
	})

	t.Run("campo requerido sin mapeo falla cerrado", func(t *testing.T) {
		cfg := configAlpha()
		delete(cfg.Mapeos, tenant.CampoCanal)

		_, err := homologation.New(cfg).Gestion(gestionAlphaCruda(), fechaProceso, 1)
		var unmapped *domain.UnmappedFieldError
		require.ErrorAs(t, err, &unmapped, "mapeo ausente es defecto de configuración")
		assert.False(t, domain.EsErrorDeRegistro(err), "debe ser fatal para la corrida, no una omisión")
	})

	t.Run("valor requerido ausente omite solo ese registro", func(t *testing.T) {
		raw := gestionAlphaCruda()
		raw["agente"] = nil

		_, err := eng.Gestion(raw, fechaProceso, 1)
		assert.True(t, domain.EsErrorDeRegistro(err))
	})

	t.Run("canal desconocido omite el registro", func(t *testing.T) {
		raw := gestionAlphaCruda()
		raw["medio"] = "FAX"

		_, err := eng.Gestion(raw, fechaProceso, 1)
		assert.True(t, domain.EsErrorDeRegistro(err))
	})

	t.Run("invariante de entidad omite el registro", func(t *testing.T) {
		raw := gestionAlphaCruda()
		raw["contacto"] = "no" // compromiso sin contacto

		_, err := eng.Gestion(raw, fechaProceso, 1)
		assert.True(t, domain.EsErrorDeRegistro(err))
	})
}

func TestEngine_Cliente(t *testing.T) {
	eng := homologation.New(configAlpha())

	t.Run("homologa tipos heterogéneos", func(t *testing.T) {
		// Una fuente relacional entrega tipos nativos, un CSV strings.
		c, err := eng.Cliente(homologation.RawRecord{
			"dni":            "12345678",
			"nombre_cliente": "Juan Pérez",
			"deuda":          decimal.NewFromFloat(1500.75),
			"dias_atraso":    int64(45),
		})
		require.NoError(t, err)
		assert.True(t, c.SaldoActual.Equal(decimal.NewFromFloat(1500.75)))
		assert.Equal(t, 45, c.DiasMora)

		c, err = eng.Cliente(homologation.RawRecord{
			"dni":            "12345678",
			"nombre_cliente": "Juan Pérez",
			"deuda":          "1500.75",
			"dias_atraso":    "45",
		})
		require.NoError(t, err)
		assert.True(t, c.SaldoActual.Equal(decimal.NewFromFloat(1500.75)), "la versión string debe coincidir")
	})

	t.Run("saldo ilegible omite el registro", func(t *testing.T) {
		_, err := eng.Cliente(homologation.RawRecord{
			"dni":            "12345678",
			"nombre_cliente": "Juan Pérez",
			"deuda":          "no-es-un-numero",
			"dias_atraso":    "45",
		})
		assert.True(t, domain.EsErrorDeRegistro(err))
	})

	t.Run("saldo negativo viola el invariante", func(t *testing.T) {
		_, err := eng.Cliente(homologation.RawRecord{
			"dni":            "12345678",
			"nombre_cliente": "Juan Pérez",
			"deuda":          "-10",
			"dias_atraso":    "0",
		})
		assert.True(t, domain.EsErrorDeRegistro(err))
	})
}
