package tables

import "github.com/JonMunkholm/buyside/internal/core"

// Pipeline column names.
const (
	PipelineName  = "Name"
	PipelineNotes = "Notes"
	PipelineTags  = "Tags"
)

func init() {
	registerPipeline()
}

func registerPipeline() {
	core.RegisterSchema(core.Schema{
		Kind:          core.KindPipeline,
		Label:         "Pipeline",
		NameColumn:    PipelineName,
		SearchColumns: []string{PipelineNotes, PipelineTags},
	})
}
