package data

import (
	"embed"
)

// Seed holds the documents written for collections that do not exist yet on first start.
// Each file is named after its collection.
//
//go:embed seed/*.json
var Seed embed.FS
