package entity

import "time"

// Estados del proceso batch de generación de PDFs.
const (
	JobPendiente  = "pendiente"
	JobProcesando = "procesando"
	JobCompletado = "completado"
	JobError      = "error"
	JobCancelado  = "cancelado"
)

// JobPDF registro de progreso de la generación masiva de boletas en PDF.
// El cliente lo consulta cada 2 segundos; Cancelar se revisa entre boletas.
type JobPDF struct {
	ID           string
	Periodo      string
	Regenerar    bool
	Estado       string
	Total        int
	Procesados   int
	Exitosos     int
	Fallidos     int
	Omitidos     int
	Cancelar     bool
	ErrorMensaje string
	IniciadoPor  string
	CreatedAt    time.Time
	StartedAt    *time.Time
	FinishedAt   *time.Time
}

// Terminado indica si el job llegó a un estado final.
func (j *JobPDF) Terminado() bool {
	return j.Estado == JobCompletado || j.Estado == JobError || j.Estado == JobCancelado
}
