package tables

import "github.com/JonMunkholm/buyside/internal/core"

// Factbook column names.
const (
	FactbookBrand   = "MARCA"
	FactbookCompany = "EMPRESA"
)

func init() {
	registerFactbook()
}

func registerFactbook() {
	core.RegisterSchema(core.Schema{
		Kind:          core.KindFactbook,
		Label:         "Factbook",
		NameColumn:    FactbookBrand,
		CompanyColumn: FactbookCompany,
	})
}
