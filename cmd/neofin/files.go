package main

import (
	"fmt"
	"os"
	"path/filepath"

	"NeoFin/internal/domain/models"
)

func readFiles(paths []string) ([]models.Document, error) {
	docs := make([]models.Document, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		docs = append(docs, models.Document{Name: filepath.Base(p), Data: data})
	}
	return docs, nil
}
