package repository

// CursorKey posición de inicio de una página: valor de la columna de orden más el id
// como desempate. La fila indicada se incluye en la página.
type CursorKey struct {
	Key string
	ID  string
}

// PageQuery parámetros de paginación por cursor que reciben los repositorios.
// Los repositorios devuelven hasta Limit+1 filas; la fila extra indica que hay otra página.
type PageQuery struct {
	Limit int
	From  *CursorKey
}

// Fetch cantidad de filas a pedir a la base.
func (p PageQuery) Fetch() int {
	return p.Limit + 1
}
