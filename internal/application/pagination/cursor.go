// Package pagination implementa la paginación por cursor usada en todos los listados.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type cursorPayload struct {
	K string `json:"k"`
	I string `json:"i"`
}

// Encode serializa la clave como cursor opaco (base64url).
func Encode(key repository.CursorKey) string {
	b, _ := json.Marshal(cursorPayload{K: key.Key, I: key.ID})
	return base64.RawURLEncoding.EncodeToString(b)
}

// Decode interpreta un cursor recibido del cliente.
func Decode(cursor string) (*repository.CursorKey, error) {
	if cursor == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("cursor inválido: %w", domain.ErrInvalidInput)
	}
	var p cursorPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.K == "" {
		return nil, fmt.Errorf("cursor inválido: %w", domain.ErrInvalidInput)
	}
	if _, err := uuid.Parse(p.I); err != nil {
		return nil, fmt.Errorf("cursor inválido: %w", domain.ErrInvalidInput)
	}
	return &repository.CursorKey{Key: p.K, ID: p.I}, nil
}

// Query normaliza el límite (por defecto 20, máximo 100) y decodifica el cursor.
func Query(req dto.PageRequest) (repository.PageQuery, error) {
	limit := req.Limit
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	from, err := Decode(req.Cursor)
	if err != nil {
		return repository.PageQuery{}, err
	}
	return repository.PageQuery{Limit: limit, From: from}, nil
}

// Build recorta la página a limit filas. Si el repositorio devolvió la fila extra,
// el siguiente cursor apunta a ella.
func Build[E any, T any](rows []E, limit int, key func(E) repository.CursorKey, mapFn func(E) T) dto.Page[T] {
	page := dto.Page[T]{Data: make([]T, 0, min(len(rows), limit))}
	if len(rows) > limit {
		page.Pagination.HasNextPage = true
		page.Pagination.NextCursor = Encode(key(rows[limit]))
		rows = rows[:limit]
	}
	for _, r := range rows {
		page.Data = append(page.Data, mapFn(r))
	}
	return page
}
