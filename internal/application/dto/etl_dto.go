package dto

// RunETLRequest pide una corrida por fecha única o por rango inclusivo.
// Fecha y Desde/Hasta son excluyentes; las fechas van en formato
// YYYY-MM-DD.
type RunETLRequest struct {
	Tenant string `json:"tenant"`
	Fecha  string `json:"fecha,omitempty"`
	Desde  string `json:"desde,omitempty"`
	Hasta  string `json:"hasta,omitempty"`
}

// TenantListResponse lista de tenants configurados.
type TenantListResponse struct {
	Tenants []string `json:"tenants"`
}
