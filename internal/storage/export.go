package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/rubble/internal/dynamo"
	"github.com/san-kum/rubble/internal/sim"
)

type ExportData struct {
	Scene   string             `json:"scene"`
	Dt      float64            `json:"dt"`
	Steps   int                `json:"steps"`
	Track   []int              `json:"track"`
	Times   []float64          `json:"times"`
	Samples [][]dynamo.Vec2    `json:"samples"`
	Broken  int                `json:"broken"`
	Metrics map[string]float64 `json:"metrics"`
}

// ExportJSON writes a run result as indented JSON.
func ExportJSON(out io.Writer, scene string, dt float64, track []int, result *sim.Result) error {
	data := ExportData{
		Scene:   scene,
		Dt:      dt,
		Steps:   result.StepsTaken,
		Track:   track,
		Times:   result.Times,
		Samples: result.Samples,
		Broken:  result.Broken,
		Metrics: result.Metrics,
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
