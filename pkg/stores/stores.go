// Package stores holds the static registry of retail stores served by
// the scheduled jobs.
package stores

import (
	"fmt"

	"github.com/pasuper/supercron/pkg/config"
)

// Store describes one retail store and the files its jobs exchange.
type Store struct {
	ID            int
	Name          string
	Recipient     string
	LabelFile     string
	InventoryFile string
}

// ESLCode returns the store code expected by the label vendor API.
func (s Store) ESLCode() string {
	return fmt.Sprintf("%04d", s.ID)
}

// All returns the store registry for the given environment. In the local
// environment every recipient is replaced by the configured default so
// that reports never reach real store addresses from a developer machine.
func All(env config.Environment, defaultRecipient string) []Store {
	stores := []Store{
		{
			ID:            1,
			Name:          "St-Hubert",
			Recipient:     "jonathan.carriere@pasuper.com",
			LabelFile:     "PRIXETIQUETTEST-HUBERT.csv",
			InventoryFile: "SUPERPICKERSTHUBERT.csv",
		},
		// St-Jean and Chateauguay receive label pushes only; their
		// inventory exports have not gone live yet.
		{
			ID:        2,
			Name:      "St-Jean",
			Recipient: "alexandre.poirier@pasuper.com",
			LabelFile: "PRIXETIQUETTEST-JEAN.csv",
		},
		{
			ID:        3,
			Name:      "Chateauguay",
			Recipient: "james.ross@pasuper.com",
			LabelFile: "PRIXETIQUETTECHATEAUGUAY.csv",
		},
	}

	if env == config.EnvLocal {
		for i := range stores {
			stores[i].Recipient = defaultRecipient
		}
	}

	return stores
}
