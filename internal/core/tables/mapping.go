package tables

import "github.com/JonMunkholm/buyside/internal/core"

func init() {
	registerMapping()
}

// The mapping table shares the Factbook's brand and company headers.
func registerMapping() {
	core.RegisterSchema(core.Schema{
		Kind:          core.KindMapping,
		Label:         "Brand mapping",
		NameColumn:    FactbookBrand,
		CompanyColumn: FactbookCompany,
	})
}
