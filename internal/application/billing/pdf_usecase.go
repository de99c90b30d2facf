package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/StantonMatt/coab-platform/internal/application/ports"
	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

// PDFUseCase genera la representación impresa (PDF) de una boleta.
// Si la boleta ya tiene pdf_key y hay almacenamiento configurado, devuelve el archivo guardado.
type PDFUseCase struct {
	boletaRepo  repository.BoletaRepository
	clienteRepo repository.ClienteRepository
	saldo       *Service
	renderer    ports.BoletaPDFRenderer
	storage     ports.ObjectStorage // nil si no hay almacenamiento
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	boletaRepo repository.BoletaRepository,
	clienteRepo repository.ClienteRepository,
	saldo *Service,
	renderer ports.BoletaPDFRenderer,
	storage ports.ObjectStorage,
) *PDFUseCase {
	return &PDFUseCase{
		boletaRepo:  boletaRepo,
		clienteRepo: clienteRepo,
		saldo:       saldo,
		renderer:    renderer,
		storage:     storage,
	}
}

// Download devuelve el PDF de la boleta del cliente.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la boleta no existe o no pertenece al cliente.
func (uc *PDFUseCase) Download(ctx context.Context, clienteID, boletaID string) (pdfBytes []byte, filename string, err error) {
	b, err := uc.boletaRepo.GetByID(ctx, boletaID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener boleta: %w", err)
	}
	if b == nil || b.ClienteID != clienteID {
		return nil, "", domain.ErrNotFound
	}
	filename = fmt.Sprintf("boleta_%s.pdf", b.Periodo)

	if b.PDFKey != "" && uc.storage != nil {
		pdfBytes, err = uc.storage.Get(ctx, b.PDFKey)
		if err == nil {
			return pdfBytes, filename, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, "", fmt.Errorf("pdf: leer almacenamiento: %w", err)
		}
	}

	pdfBytes, err = uc.Render(ctx, b)
	if err != nil {
		return nil, "", err
	}
	return pdfBytes, filename, nil
}

// Render genera el PDF de la boleta con el saldo vigente del cliente.
func (uc *PDFUseCase) Render(ctx context.Context, b *entity.Boleta) ([]byte, error) {
	detail, err := uc.saldo.GetBalanceDetail(ctx, b.ClienteID)
	if err != nil {
		return nil, fmt.Errorf("pdf: saldo del cliente: %w", err)
	}
	direcciones, err := uc.clienteRepo.ListDirecciones(ctx, b.ClienteID)
	if err != nil {
		return nil, fmt.Errorf("pdf: direcciones: %w", err)
	}
	data := ports.BoletaPDF{
		Boleta:        b,
		Cliente:       detail.Cliente,
		MontoAdeudado: detail.Result.AmountOwed(b.ID),
		SaldoCliente:  detail.Result.CurrentBalance,
	}
	if len(direcciones) > 0 {
		data.Direccion = direcciones[0]
	}
	pdfBytes, err := uc.renderer.RenderBoleta(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, nil
}
